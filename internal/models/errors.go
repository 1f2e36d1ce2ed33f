package models

import "fmt"

// InvalidFilterError reports an unparsable or unknown filter token.
type InvalidFilterError struct {
	Token  string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter %q: %s", e.Token, e.Reason)
}

// UpstreamFetchError reports that a required fetch failed, so the series
// for that dashboard section cannot be produced.
type UpstreamFetchError struct {
	Source string
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("upstream %s: %s", e.Source, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

type UnknownSourceError struct {
	Source string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown metric source %q", e.Source)
}
