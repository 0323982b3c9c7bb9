package usecase

// Error codes shared by the entry points.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeActorUnknown = "ACTOR_NOT_FOUND"
	CodeNotFound     = "NOT_FOUND"
	CodeDatabase     = "DATABASE_ERROR"
)

// DomainError: the caller did something the business rules reject
// (bad input, missing actor, insufficient role). Raised before any mutation.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

// TechnicalError: the system failed (database down, store rejected a write).
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}

// ErrorCode extracts the code from either error kind; empty for foreign errors.
func ErrorCode(err error) string {
	if d, ok := err.(*DomainError); ok {
		return d.Code
	}
	if t, ok := err.(*TechnicalError); ok {
		return t.Code
	}
	return ""
}
