package fetch

import "context"

// Driver acquires one run-log export through an authenticated dashboard
// session and returns the path of the downloaded file. Implementations own
// every UI-timing concern (waits, timeouts, navigation retries); callers
// see only a path or a failure and never retry on their own.
type Driver interface {
	Fetch(ctx context.Context) (string, error)
}
