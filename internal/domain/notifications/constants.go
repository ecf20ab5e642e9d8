package notifications

const (
	TypeEvaluationSubmitted = "evaluation.submitted"
	TypeEvaluationApproved  = "evaluation.approved"
	TypeEvaluationCompleted = "evaluation.completed"
	TypeEvaluationRejected  = "evaluation.rejected"
	TypeContactMessage      = "contact.message"
)
