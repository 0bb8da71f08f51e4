package gate

import "errors"

// Errors returned (possibly wrapped) by Gate.Authorize.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotRelated       = errors.New("subject has no relation to resource")
	ErrNoPolicyDefined  = errors.New("no policy defined for resource")
)
