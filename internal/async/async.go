// Package async runs govlink's background work on asynq: the workflow
// advancement loop, execution timeouts and the periodic cost and linkage jobs.
package async

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	conf "github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/log"
)

// syncInterval is how often the scheduler re-reads the periodic task list.
const syncInterval = 10 * time.Second

// TaskHandler processes one task type.
type TaskHandler interface {
	ProcessTask(ctx context.Context, task *asynq.Task) error
	TaskType() string
}

// Client is the part of *asynq.Client used to submit tasks.
type Client interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// App owns the queue client and, once RunWorker is called, the asynq server.
type App struct {
	cfg          *conf.Config
	client       Client
	redis        asynq.RedisClientOpt
	tasks        map[string]TaskHandler
	server       *asynq.Server
	serverConfig asynq.Config
}

func New(cfg *conf.Config) (*App, error) {
	redis, err := redisClientOpt(cfg.Scheduler.TaskQueue)
	if err != nil {
		return nil, err
	}

	app := NewWithClient(cfg, asynq.NewClient(redis))
	app.redis = redis

	return app, nil
}

// NewWithClient builds an App that submits tasks through client.
func NewWithClient(cfg *conf.Config, client Client) *App {
	return &App{
		cfg:    cfg,
		client: client,
		tasks:  make(map[string]TaskHandler),
		serverConfig: asynq.Config{
			Concurrency:  cfg.Scheduler.Concurrency,
			Queues:       conf.QueuePriorities,
			ErrorHandler: asynq.ErrorHandlerFunc(logTaskFailure),
		},
	}
}

func logTaskFailure(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)

	log.Error(log.InjectTask(ctx, task), "Task failed", err,
		slog.Int("retried", retried),
		slog.Int("maxRetry", maxRetry),
	)
}

func (a *App) RegisterTasks(ctx context.Context, handlers []TaskHandler) {
	for _, h := range handlers {
		a.tasks[h.TaskType()] = h
		log.Info(ctx, "Registered task", slog.String("taskType", h.TaskType()))
	}
}

// Mux routes every registered task type to its handler with the task type
// attached to the logging context.
func (a *App) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()

	mux.Use(func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			return next.ProcessTask(log.InjectTask(ctx, task), task)
		})
	})

	for taskType, h := range a.tasks {
		mux.HandleFunc(taskType, h.ProcessTask)
	}

	return mux
}

// RunWorker serves the registered tasks and blocks until the server stops.
func (a *App) RunWorker(ctx context.Context) error {
	log.Info(ctx, "Starting task worker", slog.Int("tasks", len(a.tasks)))

	a.server = asynq.NewServer(a.redis, a.serverConfig)

	err := a.server.Run(a.Mux())
	if err != nil {
		return errs.Wrap(ErrStartingWorker, err)
	}

	return nil
}

// RunScheduler enqueues the configured periodic tasks and blocks until the
// manager stops.
func (a *App) RunScheduler() error {
	mgr, err := asynq.NewPeriodicTaskManager(asynq.PeriodicTaskManagerOpts{
		RedisConnOpt:               a.redis,
		PeriodicTaskConfigProvider: &ScheduledTaskConfigProvider{Config: a.cfg},
		SyncInterval:               syncInterval,
	})
	if err != nil {
		return errs.Wrap(ErrCreatingScheduler, err)
	}

	err = mgr.Run()
	if err != nil {
		return errs.Wrap(ErrRunningScheduler, err)
	}

	return nil
}

// EnqueueTask submits task with opts to the queue.
func (a *App) EnqueueTask(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	ctx = log.InjectTask(ctx, task)

	info, err := a.client.Enqueue(task, opts...)
	if err != nil {
		return nil, errs.Wrap(ErrEnqueueingTask, err)
	}

	log.Debug(ctx, "Enqueued task", slog.String("taskId", info.ID), slog.String("queue", info.Queue))

	return info, nil
}

// Shutdown stops the worker, letting in-flight tasks finish, and closes the client.
func (a *App) Shutdown(ctx context.Context) error {
	if a.server != nil {
		a.server.Shutdown()
	}

	if a.client == nil {
		return nil
	}

	err := a.client.Close()
	if err != nil {
		return errs.Wrap(ErrClientShutdown, err)
	}

	log.Info(ctx, "Task queue closed")

	return nil
}
