package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available for this lot")
	ErrUnsupportedUnit     = NewDomainError("UNSUPPORTED_UNIT", "Unit of measure is not recognized")
	ErrEventImmutable      = NewDomainError("EVENT_IMMUTABLE", "A submitted tracking event cannot be modified; record a correction event instead")
	ErrLineageCycle        = NewDomainError("LINEAGE_CYCLE", "Transformation edge would make a lot its own ancestor")
	ErrMissingParentLot    = NewDomainError("MISSING_PARENT_LOT", "A transformation must reference at least one parent lot")
	ErrExpiredInputLot     = NewDomainError("EXPIRED_INPUT_LOT", "An expired lot cannot be consumed as a transformation input")
)
