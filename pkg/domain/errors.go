package domain

import "fmt"

// failure reasons surfaced in the report's issues section
const (
	ReasonTimeout          = "timeout"
	ReasonConnectionFailed = "connection_failed"
	ReasonNoContainers     = "no_post_containers"
	ReasonBadHTML          = "unparsable_html"
	ReasonBadFeed          = "invalid_feed"
)

// HTTPStatusReason formats a non-success status code as a failure reason
func HTTPStatusReason(code int) string {
	return fmt.Sprintf("http_status:%d", code)
}

// FetchError reports a failed fetch for a single source. It degrades
// coverage for that source only and never aborts the run.
type FetchError struct {
	Source string
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Source, e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractError reports a total parse failure for a single source,
// e.g. an unrecognized page structure with zero post containers.
type ExtractError struct {
	Source string
	Reason string
	Err    error
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Source, e.Reason)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// FailureReason extracts the report-facing reason from a per-source error
func FailureReason(err error) string {
	switch e := err.(type) {
	case *FetchError:
		return e.Reason
	case *ExtractError:
		return e.Reason
	default:
		return err.Error()
	}
}
