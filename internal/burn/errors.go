package burn

import "github.com/pkg/errors"

// ErrResourceExhaustion is returned by [Coordinator.Run] when the requested
// workers cannot be started. No worker runs and no result is produced.
var ErrResourceExhaustion = errors.New("resource exhaustion: cannot start burn workers")
