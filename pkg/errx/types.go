package errx

// Type represents the category of error
type Type string

const (
	// TypeInternal represents internal errors
	TypeInternal Type = "INTERNAL"

	// TypeValidation represents invalid input or configuration
	TypeValidation Type = "VALIDATION"

	// TypeCancelled represents calls abandoned by the caller
	TypeCancelled Type = "CANCELLED"

	// TypeExhausted represents exhausted budgets (retries, capacity)
	TypeExhausted Type = "EXHAUSTED"

	// TypeExternal represents errors from external collaborators
	TypeExternal Type = "EXTERNAL"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}
