package staticfile

import "net/http"

// OutcomeKind tags how a request ended.
type OutcomeKind int

const (
	Served OutcomeKind = iota
	Forbidden
	NotFound
	StreamError
)

func (k OutcomeKind) String() string {
	switch k {
	case Served:
		return "served"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case StreamError:
		return "stream_error"
	default:
		return "unknown"
	}
}

// Outcome is the result of one request. Bytes counts body bytes actually
// written; Reason is only set for StreamError.
type Outcome struct {
	Kind   OutcomeKind
	Bytes  int64
	Reason string
}

// Status is the HTTP status the outcome was reported with. A stream error
// happens after a 200 status line has gone out.
func (o Outcome) Status() int {
	switch o.Kind {
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusOK
	}
}
