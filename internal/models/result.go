package models

// ResultKind classifies the outcome of a submission.
type ResultKind string

const (
	ResultSuccess            ResultKind = "success"
	ResultRateLimited        ResultKind = "rate_limited"
	ResultTransportError     ResultKind = "transport_error"
	ResultConfigurationError ResultKind = "configuration_error"
	ResultValidationError    ResultKind = "validation_error"
)

// SubmissionResult is what the submission pipeline always resolves to.
type SubmissionResult struct {
	Kind     ResultKind
	Entry    LogEntry // enriched with derived fields on success
	Message  string   // human-readable, empty on success
	Attempts int
	Err      error
}

func (r SubmissionResult) OK() bool {
	return r.Kind == ResultSuccess
}

// Hint returns the corrective action for a failed submission.
func (k ResultKind) Hint() string {
	switch k {
	case ResultRateLimited:
		return "wait a few minutes before logging again"
	case ResultTransportError:
		return "check your connection and the web app deployment"
	case ResultConfigurationError:
		return "set the web app URL with 'wurkwurk settings --web-app-url'"
	case ResultValidationError:
		return "enter a short description of your work"
	default:
		return ""
	}
}
