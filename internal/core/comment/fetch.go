package comment

import (
	"context"
	"errors"
	"fmt"
)

// ErrQuotaExceeded is matched by fetch errors caused by an exhausted API quota.
// Every later call in the same day fails the same way.
var ErrQuotaExceeded = errors.New("api quota exceeded")

// Fetcher retrieves a single comment by id.
//
// A comment that no longer exists is not an error: implementations return
// the NotFound sentinel with a nil error. Any returned error means the id
// was not resolved and may be attempted again on a later run.
type Fetcher interface {
	Fetch(ctx context.Context, id string) (Record, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, id string) (Record, error)

func (f FetcherFunc) Fetch(ctx context.Context, id string) (Record, error) {
	return f(ctx, id)
}

// FetchError wraps a failed lookup with the id it was for.
type FetchError struct {
	ID    string
	Err   error
	Quota bool
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch comment %s: %v", e.ID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrQuotaExceeded) match quota failures without the
// underlying transport error having to wrap the sentinel.
func (e *FetchError) Is(target error) bool {
	return e.Quota && target == ErrQuotaExceeded
}
