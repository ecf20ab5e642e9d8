package directory

import "errors"

var (
	ErrNotFound          = errors.New("directory: not found")
	ErrDuplicateMD       = errors.New("directory: department already has an active MD")
	ErrMembershipEnded   = errors.New("directory: ended membership cannot become primary")
	ErrDepartmentInUse   = errors.New("directory: department has active memberships")
	ErrEmailTaken        = errors.New("directory: email already registered")
	ErrInvalidRole       = errors.New("directory: unknown role")
	ErrInvalidRank       = errors.New("directory: unknown rank")
	ErrUserDeleted       = errors.New("directory: user is deleted")
	ErrNotPrimaryCapable = errors.New("directory: membership does not belong to user")
)
