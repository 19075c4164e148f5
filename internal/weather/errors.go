package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrRegionNotFound is returned when a region code has no stored region.
	ErrRegionNotFound = errors.New("region not found")
	// ErrFetchFailed is wrapped by every FetchError.
	ErrFetchFailed = errors.New("weather fetch failed")
)

// FetchErrorKind classifies why a weather API call failed.
type FetchErrorKind string

// Fetch error kinds.
const (
	KindTransport FetchErrorKind = "transport"
	KindAPIStatus FetchErrorKind = "api_status"
	KindParse     FetchErrorKind = "parse"
	KindEmpty     FetchErrorKind = "empty"
)

// FetchError describes a failed weather API call.
type FetchError struct {
	Kind       FetchErrorKind
	RegionCode string
	// Info is the provider's info string for api_status failures, or the HTTP
	// status line for non-2xx responses.
	Info string
	Err  error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("weather fetch for %s failed (%s)", e.RegionCode, e.Kind)
	if e.Info != "" {
		msg += ": " + e.Info
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets errors.Is match both ErrFetchFailed and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Err}
}
