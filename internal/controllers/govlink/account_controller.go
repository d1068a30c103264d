package govlink

import (
	"net/http"
	"strconv"

	"github.com/govlink/govlink/internal/api/write"
	"github.com/govlink/govlink/internal/apierrors"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/manager"
	"github.com/govlink/govlink/internal/model"
	"github.com/govlink/govlink/internal/repo"
	"github.com/govlink/govlink/utils/ptr"
)

type AccountResponse struct {
	AwsAccountID              string  `json:"awsAccountId"`
	CommercialLinkedAccountID *string `json:"commercialLinkedAccountId,omitempty"`
	Name                      string  `json:"name"`
	Email                     string  `json:"email,omitempty"`
	Status                    string  `json:"status"`
	RegisteredByExecution     *string `json:"registeredByExecution,omitempty"`
}

type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Count    int               `json:"count"`
}

// ListAccounts pages through the inventory. Filters: status, unlinked, limit, offset.
func (c *APIController) ListAccounts(w http.ResponseWriter, r *http.Request) {
	filter, err := accountFilter(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	accounts, count, err := c.accounts.ListAccounts(r.Context(), filter)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	resp := AccountListResponse{
		Accounts: make([]AccountResponse, 0, len(accounts)),
		Count:    count,
	}

	for _, a := range accounts {
		resp.Accounts = append(resp.Accounts, toAccountResponse(a))
	}

	write.JSON(r.Context(), w, http.StatusOK, resp)
}

func (c *APIController) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue(AccountIDPathParam)
	if !manager.ValidAccountID(id) {
		c.fail(w, r, errs.Wrapf(manager.ErrInvalidAccountID, id))
		return
	}

	account, err := c.accounts.GetAccount(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	write.JSON(r.Context(), w, http.StatusOK, toAccountResponse(account))
}

func accountFilter(r *http.Request) (manager.AccountFilter, error) {
	q := r.URL.Query()

	filter := manager.AccountFilter{Limit: repo.DefaultLimit}

	if v := q.Get("status"); v != "" {
		status := model.AccountStatus(v)
		if status.Validate() != nil {
			return filter, errs.Wrapf(apierrors.ErrInvalidAccountQuery, "status: %s", v)
		}

		filter.Status = status
	}

	if v := q.Get("unlinked"); v != "" {
		unlinked, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errs.Wrapf(apierrors.ErrInvalidAccountQuery, "unlinked: %s", v)
		}

		filter.Unlinked = unlinked
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > repo.DefaultLimit {
			return filter, errs.Wrapf(apierrors.ErrInvalidAccountQuery, "limit: %s", v)
		}

		filter.Limit = limit
	}

	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, errs.Wrapf(apierrors.ErrInvalidAccountQuery, "offset: %s", v)
		}

		filter.Offset = offset
	}

	return filter, nil
}

func toAccountResponse(a *model.Account) AccountResponse {
	resp := AccountResponse{
		AwsAccountID: a.AwsAccountID,
		Name:         a.Name,
		Email:        a.Email,
		Status:       string(a.Status),
	}

	if a.IsLinked() {
		resp.CommercialLinkedAccountID = a.CommercialLinkedAccountID
	}

	if ptr.IsSet(a.RegisteredByExecution) {
		id := a.RegisteredByExecution.String()
		resp.RegisteredByExecution = &id
	}

	return resp
}
