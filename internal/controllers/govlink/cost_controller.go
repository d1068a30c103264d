package govlink

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/govlink/govlink/internal/api/write"
	"github.com/govlink/govlink/internal/apierrors"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/manager"
	"github.com/govlink/govlink/internal/model"
	"github.com/govlink/govlink/internal/repo"
)

const periodLayout = "2006-01-02"

// StoredCostReport is one persisted period report of an account.
type StoredCostReport struct {
	GovCloudAccountID string          `json:"govCloudAccountId"`
	StartDate         string          `json:"startDate"`
	EndDate           string          `json:"endDate"`
	Total             float64         `json:"total"`
	Currency          string          `json:"currency"`
	Regions           json.RawMessage `json:"regions,omitempty"`
	Skipped           json.RawMessage `json:"skipped,omitempty"`
	GeneratedAt       string          `json:"generatedAt"`
}

type StoredCostReportList struct {
	Reports []StoredCostReport `json:"reports"`
}

// QueryCosts aggregates the cost of the requested accounts and regions.
// Pairs without a cross-partition mapping are reported as skipped.
func (c *APIController) QueryCosts(w http.ResponseWriter, r *http.Request) {
	if c.costs == nil {
		c.fail(w, r, apierrors.ErrCostsDisabled)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	var req manager.CostRequest

	err = json.Unmarshal(body, &req)
	if err != nil {
		c.fail(w, r, errs.Wrap(apierrors.ErrDecodeBody, err))
		return
	}

	report, err := c.costs.Aggregate(r.Context(), req)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	write.JSON(r.Context(), w, http.StatusOK, report)
}

// ListCostReports returns the stored period reports of one account, newest
// first. ?limit= caps the number of reports.
func (c *APIController) ListCostReports(w http.ResponseWriter, r *http.Request) {
	if c.costs == nil {
		c.fail(w, r, apierrors.ErrCostsDisabled)
		return
	}

	id := r.PathValue(AccountIDPathParam)
	if !manager.ValidAccountID(id) {
		c.fail(w, r, errs.Wrapf(manager.ErrInvalidAccountID, id))
		return
	}

	limit := repo.DefaultLimit

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > repo.DefaultLimit {
			c.fail(w, r, errs.Wrapf(apierrors.ErrInvalidQueryParam, "limit: %s", v))
			return
		}

		limit = n
	}

	reports, err := c.costs.ListReports(r.Context(), id, limit)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	resp := StoredCostReportList{Reports: make([]StoredCostReport, 0, len(reports))}
	for _, report := range reports {
		resp.Reports = append(resp.Reports, toStoredCostReport(report))
	}

	write.JSON(r.Context(), w, http.StatusOK, resp)
}

func toStoredCostReport(report *model.CostReport) StoredCostReport {
	return StoredCostReport{
		GovCloudAccountID: report.AwsAccountID,
		StartDate:         report.PeriodStart.UTC().Format(periodLayout),
		EndDate:           report.PeriodEnd.UTC().Format(periodLayout),
		Total:             report.Total,
		Currency:          report.Currency,
		Regions:           report.Regions,
		Skipped:           report.SkippedRegions,
		GeneratedAt:       report.CreatedAt.UTC().Format(time.RFC3339),
	}
}
