package repos

import "errors"

// ErrConcurrentModification indicates an optimistic version check failed:
// another writer committed first and the caller must re-read and retry.
var ErrConcurrentModification = errors.New("concurrent modification")
