package directory

import "strings"

// Rank is the total-ordered position level used for eligibility
// comparisons. Stored values are the short codes; anything else parses to
// RankUnknown, which loses every comparison.
type Rank int8

const (
	RankUnknown Rank = -1

	RankStaf       Rank = 1
	RankSupervisor Rank = 2
	RankAssistant  Rank = 3
	RankManager    Rank = 4
	RankMD         Rank = 5
)

var rankCodes = map[string]Rank{
	"STAF":    RankStaf,
	"SVR":     RankSupervisor,
	"ASST":    RankAssistant,
	"MANAGER": RankManager,
	"MD":      RankMD,
}

func ParseRank(value string) Rank {
	if rank, ok := rankCodes[strings.ToUpper(strings.TrimSpace(value))]; ok {
		return rank
	}
	return RankUnknown
}

func (r Rank) Valid() bool {
	return r >= RankStaf && r <= RankMD
}

// Above reports whether r strictly outranks other. RankUnknown never
// outranks anything.
func (r Rank) Above(other Rank) bool {
	return r.Valid() && int8(r) > int8(other)
}

func (r Rank) String() string {
	switch r {
	case RankStaf:
		return "STAF"
	case RankSupervisor:
		return "SVR"
	case RankAssistant:
		return "ASST"
	case RankManager:
		return "MANAGER"
	case RankMD:
		return "MD"
	default:
		return "UNKNOWN"
	}
}
