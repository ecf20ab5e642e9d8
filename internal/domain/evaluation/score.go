package evaluation

import (
	"encoding/json"
	"strconv"
)

// Scores are the derived section scores of an evaluation form. Total is
// always the sum of the three sections.
type Scores struct {
	Perf   float64 `json:"scorePerf"`
	Result float64 `json:"scoreResult"`
	Comp   float64 `json:"scoreComp"`
	Total  float64 `json:"scoreTotal"`
}

// Rating keys per section. Performance and the supervisor result section
// mix double- and single-weighted sub-ratings; the operational result
// section double-weights everything.
var (
	perfDoubleKeys = []string{"responsibility", "development", "workload"}
	perfSingleKeys = []string{"qualityStandard", "coordination"}

	resultOperationalKeys = []string{"workTarget", "workQuality", "workSpeed", "workDiscipline"}

	resultSupervisorDoubleKeys = []string{"planning", "organizing"}
	resultSupervisorSingleKeys = []string{"directing", "controlling"}

	competencyKeys = []string{
		"integrity", "teamwork", "communication", "initiative",
		"adaptability", "problemSolving", "leadership", "customerFocus",
		"decisionMaking", "innovation", "discipline", "attendance",
	}
)

// ComputeScores derives the section scores from raw rating inputs. It is
// pure and total: missing or non-numeric inputs count as zero, never an
// error. Callers recompute from the persisted row whenever ratings
// change; client-supplied scores are never trusted.
func ComputeScores(ratings map[string]any, evalType string) Scores {
	perf := weightedSum(ratings, perfDoubleKeys, perfSingleKeys) / 80 * 40

	var result, comp float64
	if evalType == TypeOperational {
		result = weightedSum(ratings, resultOperationalKeys, nil) / 80 * 30
		comp = weightedSum(ratings, nil, competencyKeys) / 60 * 30
	} else {
		result = weightedSum(ratings, resultSupervisorDoubleKeys, resultSupervisorSingleKeys) / 50 * 40
		comp = weightedSum(ratings, nil, competencyKeys) / 60 * 20
	}

	return Scores{
		Perf:   perf,
		Result: result,
		Comp:   comp,
		Total:  perf + result + comp,
	}
}

// ComputeGrade maps a total score onto the letter scale.
func ComputeGrade(total float64) string {
	switch {
	case total >= 90:
		return "A"
	case total >= 80:
		return "B"
	case total >= 70:
		return "C"
	case total >= 60:
		return "D"
	default:
		return "E"
	}
}

func weightedSum(ratings map[string]any, doubleKeys, singleKeys []string) float64 {
	var sum float64
	for _, key := range doubleKeys {
		sum += ratingValue(ratings[key]) * 2
	}
	for _, key := range singleKeys {
		sum += ratingValue(ratings[key])
	}
	return sum
}

// ratingValue coerces a raw rating input to a number; anything that is
// not numeric counts as zero.
func ratingValue(raw any) float64 {
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
