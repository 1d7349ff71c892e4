package failure

type Severity int

// rewrite control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

type ClassifiedError interface {
	error
	Severity() Severity
}

// IsRecoverable reports whether err may be absorbed by the caller.
// A nil error is trivially recoverable.
func IsRecoverable(err ClassifiedError) bool {
	if err == nil {
		return true
	}
	return err.Severity() == SeverityRecoverable
}
