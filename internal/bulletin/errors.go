// Package bulletin fetches the gazette's daily index and per-entry documents.
package bulletin

import "errors"

// Errors returned by the fetcher. A day with nothing published is not an
// error: FetchDailyIndex returns an empty list.
var (
	ErrTransport            = errors.New("gazette transport error")
	ErrMalformedUpstream    = errors.New("malformed gazette response")
	ErrNotFound             = errors.New("gazette resource not found")
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrCircuitOpen          = errors.New("gazette circuit breaker open")
	ErrBodyTooLarge         = errors.New("gazette response exceeds size limit")
)
