package govlink

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/govlink/govlink/internal/apierrors"
	"github.com/govlink/govlink/internal/async/tasks"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/handlers"
	"github.com/govlink/govlink/internal/manager"
	"github.com/govlink/govlink/internal/model"
	"github.com/govlink/govlink/internal/workflow"
)

const maxBodyBytes = 1 << 20

type WorkflowEngine interface {
	Start(ctx context.Context, req workflow.Request) (*model.Execution, error)
	Describe(ctx context.Context, id uuid.UUID) (*model.Execution, []*model.ExecutionEvent, error)
	Abort(ctx context.Context, id uuid.UUID, reason string) (*model.Execution, error)
}

type Accounts interface {
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	ListAccounts(ctx context.Context, filter manager.AccountFilter) ([]*model.Account, int, error)
}

type CostAggregator interface {
	Aggregate(ctx context.Context, req manager.CostRequest) (*manager.CostReport, error)
	ListReports(ctx context.Context, accountID string, limit int) ([]*model.CostReport, error)
}

// APIController serves the govlink REST API. Workflow and cost endpoints
// answer 501 unless their collaborators are configured.
type APIController struct {
	engine   WorkflowEngine
	enqueuer tasks.Enqueuer
	retries  uint
	accounts Accounts
	costs    CostAggregator
}

type Option func(*APIController)

// WithWorkflow enables the account workflow endpoints.
func WithWorkflow(engine WorkflowEngine, enqueuer tasks.Enqueuer, enqueueRetries uint) Option {
	return func(c *APIController) {
		c.engine = engine
		c.enqueuer = enqueuer
		c.retries = enqueueRetries
	}
}

// WithCosts enables cost aggregation.
func WithCosts(costs CostAggregator) Option {
	return func(c *APIController) {
		c.costs = costs
	}
}

func NewAPIController(accounts Accounts, opts ...Option) *APIController {
	c := &APIController{accounts: accounts}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *APIController) fail(w http.ResponseWriter, r *http.Request, err error) {
	handlers.ResponseError(w, r, err)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errs.Wrapf(apierrors.ErrDecodeBody, "body exceeds %d bytes", tooLarge.Limit)
		}

		return nil, errs.Wrap(apierrors.ErrDecodeBody, err)
	}

	return body, nil
}

func executionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(ExecutionIDPathParam))
	if err != nil {
		return uuid.Nil, errs.Wrap(apierrors.ErrInvalidExecutionID, err)
	}

	return id, nil
}
