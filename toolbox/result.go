package toolbox

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the tagged outcome of a lookup tool. Exactly one of Report or
// ErrorMessage is set, matching Status.
type Result struct {
	Status       string `json:"status"`
	Report       string `json:"report,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Success builds a success result carrying report.
func Success(report string) Result {
	return Result{Status: StatusSuccess, Report: report}
}

// Failure builds an error result carrying msg.
func Failure(msg string) Result {
	return Result{Status: StatusError, ErrorMessage: msg}
}

// OK reports whether the result is a success.
func (r Result) OK() bool { return r.Status == StatusSuccess }

