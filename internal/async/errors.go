package async

import "errors"

// Queue connection errors.
var (
	ErrLoadingQueueHost   = errors.New("failed to load task queue host")
	ErrMTLSRedisClientOpt = errors.New("failed to build mTLS redis client options")
	ErrSecretTypeQueue    = errors.New("unsupported secret type for task queue")
	ErrACLPassword        = errors.New("redis ACL secret has no password")
	ErrACLUsername        = errors.New("redis ACL secret has no username")
)

// Task lifecycle errors. Advancement and timeout tasks surface these when the
// queue refuses them, so callers can tell a lost enqueue from a handler failure.
var (
	ErrEnqueueingTask    = errors.New("failed to enqueue workflow task")
	ErrClientShutdown    = errors.New("failed to close task queue client")
	ErrStartingWorker    = errors.New("failed to start task worker")
	ErrCreatingScheduler = errors.New("failed to create periodic task scheduler")
	ErrRunningScheduler  = errors.New("periodic task scheduler stopped")
)
