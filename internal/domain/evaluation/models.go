package evaluation

import "time"

// Cycle is a time-boxed evaluation period.
type Cycle struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	Stage     string    `json:"stage"`
	OpensAt   time.Time `json:"opensAt"`
	ClosesAt  time.Time `json:"closesAt"`
	Active    bool      `json:"active"`
	Mandatory bool      `json:"mandatory"`
	CreatedAt time.Time `json:"createdAt"`
}

// OpenAt reports whether the cycle accepts transitions at the given
// instant. Every mutating operation re-checks this, so a cycle closing
// mid-flow blocks in-progress evaluations too.
func (c *Cycle) OpenAt(now time.Time) bool {
	return c.Active && !now.Before(c.OpensAt) && !now.After(c.ClosesAt)
}

// Evaluation is the workflow entity. Manager and MD are the two approval
// steps; empty means the step is unassigned and short-circuits at
// submission.
type Evaluation struct {
	ID        string `json:"id"`
	CycleID   string `json:"cycleId"`
	OwnerID   string `json:"ownerId"`
	CreatorID string `json:"creatorId"`
	ManagerID string `json:"managerId,omitempty"`
	MDID      string `json:"mdId,omitempty"`
	Stage     string `json:"stage"`
	Type      string `json:"type"`
	Status    string `json:"status"`

	Ratings map[string]any `json:"ratings,omitempty"`

	ScorePerf   float64 `json:"scorePerf"`
	ScoreResult float64 `json:"scoreResult"`
	ScoreComp   float64 `json:"scoreComp"`
	ScoreTotal  float64 `json:"scoreTotal"`
	Grade       string  `json:"grade,omitempty"`

	// Version is the optimistic-concurrency token; every transition is a
	// compare-and-swap on (id, version).
	Version int `json:"version"`

	SubmittedAt   *time.Time `json:"submittedAt,omitempty"`
	OwnerSigned   *time.Time `json:"ownerSignedAt,omitempty"`
	ApproverAt    *time.Time `json:"approverAt,omitempty"`
	ManagerSigned *time.Time `json:"managerSignedAt,omitempty"`
	MDSigned      *time.Time `json:"mdSignedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	RejectedAt    *time.Time `json:"rejectedAt,omitempty"`

	OwnerSignature   []byte `json:"-"`
	ManagerSignature []byte `json:"-"`
	MDSignature      []byte `json:"-"`

	OwnerComment   string `json:"ownerComment,omitempty"`
	ManagerComment string `json:"managerComment,omitempty"`
	MDComment      string `json:"mdComment,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdatePatch carries the fields a draft update may merge. Nil pointers
// leave the stored value untouched.
type UpdatePatch struct {
	Type      *string        `json:"type,omitempty"`
	ManagerID *string        `json:"managerId,omitempty"`
	MDID      *string        `json:"mdId,omitempty"`
	Ratings   map[string]any `json:"ratings,omitempty"`
	Comment   *string        `json:"comment,omitempty"`
}

// ListFilter narrows evaluation listings.
type ListFilter struct {
	CycleID       string
	OwnerID       string
	Status        string
	ParticipantID string
	Limit         int
	Offset        int
}

// EligibleOptions mirror the list-eligible query flags.
type EligibleOptions struct {
	IncludeSelf  bool
	IncludeTaken bool
}
