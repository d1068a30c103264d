package manager

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/govlink/govlink/internal/bridge"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/events"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/metrics"
	"github.com/govlink/govlink/internal/model"
	"github.com/govlink/govlink/internal/repo"
	"github.com/govlink/govlink/utils/ptr"
)

const (
	dateLayout         = "2006-01-02"
	defaultGranularity = "DAILY"
	defaultCurrency    = "USD"

	SkipReasonMappingNotFound = "mapping_not_found"
	SkipReasonError           = "error"

	WarningTagsIgnored = "tag filters are not supported by the bridge and were ignored"
)

// CostQuerier is the part of the bridge client used for cost data.
type CostQuerier interface {
	QueryCost(ctx context.Context, q bridge.CostQuery) (*bridge.CostResult, error)
}

// CostRequest names, per GovCloud account id, the regions to query over one period.
type CostRequest struct {
	Accounts    map[string][]string `json:"accounts"`
	StartDate   string              `json:"startDate"`
	EndDate     string              `json:"endDate"`
	Granularity string              `json:"granularity,omitempty"`
	Tags        map[string]string   `json:"tags,omitempty"`
}

func (r CostRequest) period() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, errs.Wrap(ErrInvalidCostPeriod, err)
	}

	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, errs.Wrap(ErrInvalidCostPeriod, err)
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, errs.Wrapf(ErrInvalidCostPeriod, "%s is not after %s", r.EndDate, r.StartDate)
	}

	return start, end, nil
}

type RegionCost struct {
	Region   string               `json:"region"`
	Total    float64              `json:"total"`
	Services []bridge.ServiceCost `json:"services,omitempty"`
}

type SkippedRegion struct {
	Region string `json:"region"`
	Reason string `json:"reason"`
}

type AccountCost struct {
	GovCloudAccountID   string          `json:"govCloudAccountId"`
	CommercialAccountID string          `json:"commercialAccountId,omitempty"`
	Total               float64         `json:"total"`
	Currency            string          `json:"currency"`
	Regions             []RegionCost    `json:"regions"`
	Skipped             []SkippedRegion `json:"skipped,omitempty"`
}

// SkippedAccount is an account for which no region returned a cost. It is
// left out of CostReport.Accounts.
type SkippedAccount struct {
	GovCloudAccountID string          `json:"govCloudAccountId"`
	Regions           []SkippedRegion `json:"regions"`
}

// CostReport is the aggregate over every account of a CostRequest.
type CostReport struct {
	StartDate string           `json:"startDate"`
	EndDate   string           `json:"endDate"`
	Accounts  []AccountCost    `json:"accounts"`
	Skipped   []SkippedAccount `json:"skipped,omitempty"`
	Total     float64          `json:"total"`
	Currency  string           `json:"currency"`
	Warnings  []string         `json:"warnings,omitempty"`
}

type CostManager struct {
	bridge   CostQuerier
	repo     repo.Repo
	accounts *AccountManager
	emitter  events.Emitter
}

func NewCostManager(b CostQuerier, r repo.Repo, accounts *AccountManager, emitter events.Emitter) *CostManager {
	return &CostManager{
		bridge:   b,
		repo:     r,
		accounts: accounts,
		emitter:  emitter,
	}
}

// Aggregate queries every (account, region) pair of req. Pairs the bridge
// cannot resolve are skipped and recorded on the account; the batch never aborts.
// An account without a single resolved region is omitted from Accounts and
// listed in Skipped instead.
func (m *CostManager) Aggregate(ctx context.Context, req CostRequest) (*CostReport, error) {
	if len(req.Accounts) == 0 {
		return nil, ErrEmptyCostRequest
	}

	_, _, err := req.period()
	if err != nil {
		return nil, err
	}

	granularity := req.Granularity
	if granularity == "" {
		granularity = defaultGranularity
	}

	report := &CostReport{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Currency:  defaultCurrency,
		Accounts:  make([]AccountCost, 0, len(req.Accounts)),
	}

	if len(req.Tags) > 0 {
		log.Warn(ctx, "Ignoring cost tag filters", slog.Int("tags", len(req.Tags)))
		report.Warnings = append(report.Warnings, WarningTagsIgnored)
	}

	for _, id := range slices.Sorted(maps.Keys(req.Accounts)) {
		account := m.aggregateAccount(log.InjectAccount(ctx, id), id, req.Accounts[id], req.StartDate, req.EndDate, granularity)

		if len(account.Regions) == 0 {
			report.Skipped = append(report.Skipped, SkippedAccount{
				GovCloudAccountID: id,
				Regions:           account.Skipped,
			})

			continue
		}

		report.Total += account.Total
		if account.Currency != "" {
			report.Currency = account.Currency
		}

		report.Accounts = append(report.Accounts, account)
	}

	return report, nil
}

func (m *CostManager) aggregateAccount(
	ctx context.Context,
	id string,
	regions []string,
	startDate, endDate, granularity string,
) AccountCost {
	out := AccountCost{
		GovCloudAccountID: id,
		Regions:           []RegionCost{},
	}

	if m.accounts != nil {
		account, err := m.accounts.GetAccount(ctx, id)
		if err == nil {
			out.CommercialAccountID = ptr.GetSafeDeref(account.CommercialLinkedAccountID)
		}
	}

	for _, region := range regions {
		res, err := m.bridge.QueryCost(ctx, bridge.CostQuery{
			LinkedAccountID:     id,
			IsGovCloudAccountID: true,
			CommercialAccountID: out.CommercialAccountID,
			StartDate:           startDate,
			EndDate:             endDate,
			Granularity:         granularity,
			Region:              region,
		})
		if err != nil {
			out.Skipped = append(out.Skipped, m.skip(ctx, region, err))
			continue
		}

		out.Total += res.TotalCost
		if res.Currency != "" {
			out.Currency = res.Currency
		}

		out.Regions = append(out.Regions, RegionCost{
			Region:   region,
			Total:    res.TotalCost,
			Services: res.Services,
		})
	}

	if out.Currency == "" {
		out.Currency = defaultCurrency
	}

	return out
}

func (m *CostManager) skip(ctx context.Context, region string, err error) SkippedRegion {
	reason := SkipReasonError

	var notFound *bridge.AccountMappingNotFoundError
	if errors.As(err, &notFound) {
		reason = SkipReasonMappingNotFound

		log.Warn(ctx, "No cross-partition mapping for account, skipping", slog.String("region", region))
	} else {
		log.Error(ctx, "Cost query failed, skipping", err, slog.String("region", region))
	}

	metrics.CostQueriesSkipped.WithLabelValues(reason).Inc()

	return SkippedRegion{Region: region, Reason: reason}
}

// ReportPeriod aggregates every inventory account over [start, end) across
// regions and persists one model.CostReport per account.
func (m *CostManager) ReportPeriod(
	ctx context.Context,
	start, end time.Time,
	regions []string,
	granularity string,
) (*CostReport, error) {
	req := CostRequest{
		Accounts:    map[string][]string{},
		StartDate:   start.Format(dateLayout),
		EndDate:     end.Format(dateLayout),
		Granularity: granularity,
	}

	err := m.accounts.ForEachAccount(ctx, AccountFilter{}, repo.DefaultLimit, func(accounts []*model.Account) error {
		for _, a := range accounts {
			req.Accounts[a.AwsAccountID] = regions
		}

		return nil
	})
	if err != nil {
		return nil, errs.Wrap(ErrListAccounts, err)
	}

	if len(req.Accounts) == 0 {
		log.Info(ctx, "No inventory accounts to report costs for")
		return &CostReport{StartDate: req.StartDate, EndDate: req.EndDate, Currency: defaultCurrency}, nil
	}

	report, err := m.Aggregate(ctx, req)
	if err != nil {
		return nil, err
	}

	err = m.save(ctx, report, start, end)
	if err != nil {
		return nil, err
	}

	if m.emitter != nil {
		err = m.emitter.Emit(ctx, events.Event{
			Type: events.TypeCostReportGenerated,
			Time: time.Now().UTC(),
			Detail: events.CostReportGenerated{
				PeriodStart: report.StartDate,
				PeriodEnd:   report.EndDate,
				Accounts:    len(report.Accounts),
				Total:       report.Total,
			},
		})
		if err != nil {
			log.Error(ctx, "Failed to emit cost report event", err)
		}
	}

	return report, nil
}

// save upserts the per-account rows of report for the period. Rows of
// skipped accounts left by an earlier run of the period are removed.
func (m *CostManager) save(ctx context.Context, report *CostReport, start, end time.Time) error {
	err := m.repo.Transaction(ctx, func(ctx context.Context, r repo.Repo) error {
		for _, skipped := range report.Skipped {
			err := deletePeriod(ctx, r, skipped.GovCloudAccountID, start)
			if err != nil {
				return err
			}
		}

		for _, account := range report.Accounts {
			regions, err := json.Marshal(account.Regions)
			if err != nil {
				return err
			}

			skipped, err := json.Marshal(account.Skipped)
			if err != nil {
				return err
			}

			err = deletePeriod(ctx, r, account.GovCloudAccountID, start)
			if err != nil {
				return err
			}

			err = r.Create(ctx, &model.CostReport{
				ID:             uuid.New(),
				AwsAccountID:   account.GovCloudAccountID,
				PeriodStart:    start,
				PeriodEnd:      end,
				Total:          account.Total,
				Currency:       account.Currency,
				Regions:        regions,
				SkippedRegions: skipped,
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return errs.Wrap(ErrSaveCostReport, err)
	}

	return nil
}

func deletePeriod(ctx context.Context, r repo.Repo, accountID string, start time.Time) error {
	_, err := r.Delete(ctx, &model.CostReport{}, *repo.NewQuery().Where(repo.NewCompositeKeyGroup(
		repo.NewCompositeKey().
			Where(repo.AwsAccountIDField, accountID).
			Where(repo.PeriodStartField, start),
	)))

	return err
}

// ListReports returns the stored reports of one account, newest first.
func (m *CostManager) ListReports(ctx context.Context, accountID string, limit int) ([]*model.CostReport, error) {
	var reports []*model.CostReport

	_, err := m.repo.List(ctx, model.CostReport{}, &reports, *repo.NewQuery().
		Where(repo.NewCompositeKeyGroup(repo.NewCompositeKey().Where(repo.AwsAccountIDField, accountID))).
		Order(repo.OrderField{Field: repo.PeriodStartField, Direction: repo.Desc}).
		SetLimit(limit))
	if err != nil {
		return nil, errs.Wrap(ErrListCostReports, err)
	}

	return reports, nil
}
