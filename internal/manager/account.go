package manager

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/google/uuid"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/events"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/model"
	"github.com/govlink/govlink/internal/repo"
	"github.com/govlink/govlink/utils/ptr"
)

const emitRetryDelay = 200 * time.Millisecond

var accountIDPattern = regexp.MustCompile(`^\d{12}$`)

func ValidAccountID(id string) bool {
	return accountIDPattern.MatchString(id)
}

type RegisterAccountInput struct {
	GovCloudAccountID   string
	CommercialAccountID string
	AccountName         string
	Email               string
	ExecutionID         uuid.UUID
}

// AccountManager owns the sandbox inventory records.
type AccountManager struct {
	repo     repo.Repo
	emitter  events.Emitter
	reserved []string
	retries  uint
	delay    time.Duration
	now      func() time.Time
}

func NewAccountManager(r repo.Repo, emitter events.Emitter, inventory *config.Inventory, ev *config.Events) *AccountManager {
	retries := ev.Retries
	if retries == 0 {
		retries = 1
	}

	return &AccountManager{
		repo:     r,
		emitter:  emitter,
		reserved: inventory.ReservedAccountIDs(),
		retries:  retries,
		delay:    emitRetryDelay,
		now:      time.Now,
	}
}

// RegisterAccount creates the inventory record for a joined account exactly once.
// A replay from the execution that created the record returns the stored record
// without emitting a second event; any other duplicate is ErrAccountAlreadyRegistered.
func (m *AccountManager) RegisterAccount(ctx context.Context, in RegisterAccountInput) (*model.Account, error) {
	ctx = log.InjectAccount(ctx, in.GovCloudAccountID)

	err := m.validate(in)
	if err != nil {
		return nil, err
	}

	var (
		account  *model.Account
		replayed bool
	)

	err = m.repo.Transaction(ctx, func(ctx context.Context, r repo.Repo) error {
		existing := &model.Account{AwsAccountID: in.GovCloudAccountID}

		found, err := r.First(ctx, existing, *repo.NewQuery())
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		if found {
			if in.ExecutionID != uuid.Nil && ptr.GetSafeDeref(existing.RegisteredByExecution) == in.ExecutionID {
				account, replayed = existing, true
				return nil
			}

			return ErrAccountAlreadyRegistered
		}

		account = &model.Account{
			AwsAccountID:              in.GovCloudAccountID,
			Name:                      in.AccountName,
			Email:                     in.Email,
			Status:                    model.AccountAvailable,
			CommercialLinkedAccountID: ptr.NonZero(in.CommercialAccountID),
			RegisteredByExecution:     ptr.NonZero(in.ExecutionID),
		}

		return r.Create(ctx, account)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountAlreadyRegistered):
			return nil, ErrAccountAlreadyRegistered
		case errors.Is(err, repo.ErrUniqueConstraint):
			return nil, errs.Wrap(ErrAccountAlreadyRegistered, err)
		default:
			return nil, errs.Wrap(ErrRegisterAccount, err)
		}
	}

	if replayed {
		log.Info(ctx, "Account registration replayed")
		return account, nil
	}

	log.Info(ctx, "Account registered")

	err = m.emit(ctx, events.Event{
		Type: events.TypeAccountRegistered,
		Time: m.now().UTC(),
		Detail: events.AccountRegistered{
			AwsAccountID:              account.AwsAccountID,
			CommercialLinkedAccountID: in.CommercialAccountID,
			AccountName:               account.Name,
			Status:                    string(account.Status),
			ExecutionID:               executionIDString(in.ExecutionID),
		},
	})
	if err != nil {
		// The record is committed; a lost event must not fail the registration.
		log.Error(ctx, "Failed to emit account registered event", err)
	}

	return account, nil
}

func (m *AccountManager) validate(in RegisterAccountInput) error {
	if !ValidAccountID(in.GovCloudAccountID) {
		return errs.Wrapf(ErrInvalidAccountID, in.GovCloudAccountID)
	}

	if in.CommercialAccountID != "" && !ValidAccountID(in.CommercialAccountID) {
		return errs.Wrapf(ErrInvalidAccountID, in.CommercialAccountID)
	}

	if slices.Contains(m.reserved, in.GovCloudAccountID) {
		return errs.Wrapf(ErrReservedAccount, in.GovCloudAccountID)
	}

	return nil
}

func (m *AccountManager) emit(ctx context.Context, e events.Event) error {
	err := retry.New(
		retry.Context(ctx),
		retry.Attempts(m.retries),
		retry.Delay(m.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	).Do(func() error {
		return m.emitter.Emit(ctx, e)
	})
	if err != nil {
		return errs.Wrap(ErrEmitEvent, err)
	}

	return nil
}

func (m *AccountManager) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	account := &model.Account{AwsAccountID: id}

	_, err := m.repo.First(ctx, account, *repo.NewQuery())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errs.Wrapf(ErrAccountNotFound, id)
		}

		return nil, errs.Wrap(ErrGetAccount, err)
	}

	return account, nil
}

type AccountFilter struct {
	Status   model.AccountStatus
	Unlinked bool
	Limit    int
	Offset   int
}

func (f AccountFilter) query() *repo.Query {
	ck := repo.NewCompositeKey()

	if f.Status != "" {
		ck = ck.Where(repo.StatusField, f.Status)
	}

	if f.Unlinked {
		ck = ck.Where(repo.CommercialLinkedAccountIDField, repo.Empty)
	}

	query := repo.NewQuery().Order(repo.OrderField{Field: repo.AwsAccountIDField, Direction: repo.Asc})
	if len(ck.Conds) > 0 {
		query = query.Where(repo.NewCompositeKeyGroup(ck))
	}

	return query
}

// ListAccounts returns one page of accounts and the total matching count.
func (m *AccountManager) ListAccounts(ctx context.Context, filter AccountFilter) ([]*model.Account, int, error) {
	query := filter.query().SetLimit(filter.Limit).SetOffset(filter.Offset)

	var accounts []*model.Account

	count, err := m.repo.List(ctx, model.Account{}, &accounts, *query)
	if err != nil {
		return nil, 0, errs.Wrap(ErrListAccounts, err)
	}

	return accounts, count, nil
}

// ForEachAccount walks every inventory account matching filter in batches.
func (m *AccountManager) ForEachAccount(
	ctx context.Context,
	filter AccountFilter,
	batchSize int,
	fn func([]*model.Account) error,
) error {
	return repo.ProcessInBatch(ctx, m.repo, filter.query(), batchSize, fn)
}

// Unregistered returns the ids without an inventory record, in input order.
func (m *AccountManager) Unregistered(ctx context.Context, ids []string) ([]string, error) {
	registered := map[string]bool{}

	for batch := range slices.Chunk(ids, repo.DefaultLimit) {
		var accounts []*model.Account

		_, err := m.repo.List(ctx, model.Account{}, &accounts, *repo.NewQuery().
			Where(repo.NewCompositeKeyGroup(repo.NewCompositeKey().Where(repo.AwsAccountIDField, batch))).
			SetLimit(len(batch)))
		if err != nil {
			return nil, errs.Wrap(ErrListAccounts, err)
		}

		for _, a := range accounts {
			registered[a.AwsAccountID] = true
		}
	}

	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if !registered[id] {
			out = append(out, id)
		}
	}

	return out, nil
}

// SetCommercialLinkedAccountID records the cross-partition linkage of an
// unlinked account. Setting the same value again is a no-op.
func (m *AccountManager) SetCommercialLinkedAccountID(ctx context.Context, id, commercialID string) error {
	if !ValidAccountID(commercialID) {
		return errs.Wrapf(ErrInvalidAccountID, commercialID)
	}

	account, err := m.GetAccount(ctx, id)
	if err != nil {
		return err
	}

	if account.IsLinked() {
		if *account.CommercialLinkedAccountID == commercialID {
			return nil
		}

		return errs.Wrapf(ErrLinkageImmutable, id)
	}

	account.CommercialLinkedAccountID = &commercialID

	patched, err := m.repo.Patch(ctx, account, *repo.NewQuery().
		Update(repo.CommercialLinkedAccountIDField).
		Where(repo.NewCompositeKeyGroup(
			repo.NewCompositeKey().Where(repo.CommercialLinkedAccountIDField, repo.Empty),
		)))
	if err != nil {
		if errors.Is(err, repo.ErrUniqueConstraint) {
			return errs.Wrapf(ErrCommercialIDInUse, commercialID)
		}

		return errs.Wrap(ErrUpdateAccount, err)
	}

	if !patched {
		return errs.Wrapf(ErrLinkageImmutable, id)
	}

	log.Info(ctx, "Commercial linkage recorded",
		slog.String("govCloudAccountId", id),
		slog.String("commercialAccountId", commercialID),
	)

	return nil
}

func executionIDString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}

	return id.String()
}
