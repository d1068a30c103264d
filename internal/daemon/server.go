package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"syscall"
	"time"

	"github.com/samber/oops"

	"github.com/govlink/govlink/internal/app"
	"github.com/govlink/govlink/internal/async"
	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/constants"
	"github.com/govlink/govlink/internal/controllers/govlink"
	"github.com/govlink/govlink/internal/handlers"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/middleware"
)

const (
	ReadHeaderTimeout = 5 * time.Second
	ReadTimeout       = 10 * time.Second
	WriteTimeout      = 10 * time.Second
	IdleTimeout       = 120 * time.Second
	ServerLogDomain   = "server daemon"
)

type GovlinkServer struct {
	cfg        *config.Config
	components *app.Components
	queue      *async.App
	server     *http.Server
}

type Server interface {
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewGovlinkServer opens the database, builds the configured components and
// binds them to the HTTP API.
func NewGovlinkServer(ctx context.Context, cfg *config.Config) (*GovlinkServer, error) {
	components, err := app.New(ctx, cfg)
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "building components")
	}

	s, err := NewGovlinkServerWithComponents(ctx, cfg, components)
	if err != nil {
		closeErr := components.Close(ctx)
		if closeErr != nil {
			log.Error(ctx, "Failed to release components", closeErr)
		}

		return nil, err
	}

	return s, nil
}

// NewGovlinkServerWithComponents serves already built components. A task
// queue client is opened only when the workflow engine is configured.
func NewGovlinkServerWithComponents(
	ctx context.Context,
	cfg *config.Config,
	components *app.Components,
) (*GovlinkServer, error) {
	s := &GovlinkServer{
		cfg:        cfg,
		components: components,
	}

	var opts []govlink.Option

	if components.Engine != nil {
		queue, err := async.New(cfg)
		if err != nil {
			return nil, oops.In(ServerLogDomain).Wrapf(err, "creating task queue client")
		}

		s.queue = queue
		opts = append(opts, govlink.WithWorkflow(components.Engine, queue, cfg.Workflow.EnqueueRetries))
	} else {
		log.Info(ctx, "Account workflow disabled, workflow endpoints answer 501")
	}

	if components.Costs != nil {
		opts = append(opts, govlink.WithCosts(components.Costs))
	}

	controller := govlink.NewAPIController(components.Accounts, opts...)

	s.server = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewHandler(controller),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	return s, nil
}

// NewHandler mounts the controller routes behind the request middlewares.
// InjectRequestID runs first so every later log line carries the request id.
func NewHandler(controller *govlink.APIController) http.Handler {
	mux := NewServeMux(constants.APIVersionedNamespace)

	for _, route := range controller.Routes() {
		mux.HandleFunc(route.Pattern(), route.Handler)
	}

	mux.NotFound(handlers.RouteNotFound())

	return middleware.Chain(mux,
		middleware.InjectRequestID(),
		middleware.PanicRecoveryMiddleware(),
		middleware.LoggingMiddleware(),
	)
}

func (s *GovlinkServer) Start(ctx context.Context) error {
	go func() {
		log.Info(ctx, "Serving govlink API", slog.String("address", s.server.Addr))

		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "API listener stopped unexpectedly", err)

			// Let the signal handler of the command run the normal shutdown.
			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}
	}()

	return nil
}

func (s *GovlinkServer) Close(ctx context.Context) error {
	drainCtx, cancel := context.WithTimeout(ctx, s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	err := s.server.Shutdown(drainCtx)
	if err != nil {
		return oops.In(ServerLogDomain).
			WithContext(ctx).
			Wrapf(err, "draining API listener")
	}

	log.Info(ctx, "API listener drained")

	if s.queue != nil {
		err = s.queue.Shutdown(ctx)
		if err != nil {
			return oops.In(ServerLogDomain).Wrapf(err, "closing task queue client")
		}
	}

	err = s.components.Close(ctx)
	if err != nil {
		return oops.In(ServerLogDomain).Wrapf(err, "releasing components")
	}

	return nil
}
