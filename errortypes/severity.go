package errortypes

// Severity represents the severity level of a decoding error.
type Severity int

const (
	// SeverityUnknown represents an unknown severity level.
	SeverityUnknown Severity = iota

	// SeverityFatal represents an error which prevents a consent model from being returned.
	SeverityFatal

	// SeverityWarning represents a non-fatal condition where part of the input was ignored,
	// such as a forward-compatible segment type this decoder does not know.
	SeverityWarning
)

// IsWarning returns true if an error is labeled with a Severity of SeverityWarning.
func IsWarning(err error) bool {
	s, ok := err.(Coder)
	return ok && s.Severity() == SeverityWarning
}

// SplitBySeverity partitions errs into fatal errors and warnings.
// Errors which carry no severity are treated as fatal.
func SplitBySeverity(errs []error) (fatal []error, warnings []error) {
	for _, err := range errs {
		if IsWarning(err) {
			warnings = append(warnings, err)
		} else {
			fatal = append(fatal, err)
		}
	}
	return
}
