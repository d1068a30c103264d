package tasks

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/govlink/govlink/internal/bridge"
	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/manager"
)

type LinkedAccountLister interface {
	ListAccounts(ctx context.Context) ([]bridge.LinkedAccount, error)
}

type LinkRecorder interface {
	SetCommercialLinkedAccountID(ctx context.Context, id, commercialID string) error
}

// LinkReconciler backfills the commercial linkage of inventory accounts from
// the pairs known to the commercial partition. Existing linkage is never changed.
type LinkReconciler struct {
	lister   LinkedAccountLister
	recorder LinkRecorder
}

func NewLinkReconciler(lister LinkedAccountLister, recorder LinkRecorder) *LinkReconciler {
	return &LinkReconciler{lister: lister, recorder: recorder}
}

func (r *LinkReconciler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	log.Info(ctx, "Started processing link reconcile task")

	pairs, err := r.lister.ListAccounts(ctx)
	if err != nil {
		log.Error(ctx, "Listing linked accounts from bridge", err)
		return errs.Wrap(ErrRunningTask, err)
	}

	var (
		failed  []error
		skipped int
	)

	for _, pair := range pairs {
		if pair.CommercialAccountID == "" {
			continue
		}

		ctx := log.InjectAccount(ctx, pair.GovCloudAccountID)

		err = r.recorder.SetCommercialLinkedAccountID(ctx, pair.GovCloudAccountID, pair.CommercialAccountID)

		switch {
		case err == nil:
		case errors.Is(err, manager.ErrAccountNotFound):
			skipped++
		case errors.Is(err, manager.ErrLinkageImmutable), errors.Is(err, manager.ErrCommercialIDInUse):
			skipped++

			log.Warn(ctx, "Inventory linkage disagrees with bridge",
				slog.String("commercialAccountId", pair.CommercialAccountID),
				log.ErrorAttr(err),
			)
		default:
			log.Error(ctx, "Failed to record commercial linkage", err)

			failed = append(failed, err)
		}
	}

	log.Info(ctx, "Link reconcile task completed",
		slog.Int("pairs", len(pairs)),
		slog.Int("skipped", skipped),
		slog.Int("failed", len(failed)),
	)

	if len(failed) > 0 {
		return errs.Wrap(ErrRunningTask, errors.Join(failed...))
	}

	return nil
}

func (r *LinkReconciler) TaskType() string {
	return config.TypeLinkReconcile
}
