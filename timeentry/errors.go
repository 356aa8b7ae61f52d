package timeentry

import "fmt"

// ValidationError reports a malformed entry field. The mutation that produced
// it is never applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
