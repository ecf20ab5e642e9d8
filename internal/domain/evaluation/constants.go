package evaluation

const (
	StatusDraft            = "DRAFT"
	StatusSubmitted        = "SUBMITTED"
	StatusApproverApproved = "APPROVER_APPROVED"
	StatusCompleted        = "COMPLETED"
	StatusRejected         = "REJECTED"

	TypeOperational = "OPERATIONAL"
	TypeSupervisor  = "SUPERVISOR"

	StageMidYear = "MID_YEAR"
	StageYearEnd = "YEAR_END"
)

// MinSignatureBytes is the decoded minimum for an accepted signature
// image. This is a sanity floor, not format validation.
const MinSignatureBytes = 16
