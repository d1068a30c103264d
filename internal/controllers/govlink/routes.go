package govlink

import (
	"net/http"

	"github.com/govlink/govlink/internal/constants"
)

const (
	ExecutionIDPathParam = "executionId"
	AccountIDPathParam   = "accountId"
)

// Route is one endpoint of the API.
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

func (r Route) Pattern() string {
	return r.Method + " " + constants.APIVersionedNamespace + r.Path
}

// Routes lists every endpoint served by the controller.
func (c *APIController) Routes() []Route {
	return []Route{
		{http.MethodPost, "/accounts", c.CreateAccount},
		{http.MethodGet, "/accounts", c.ListAccounts},
		{http.MethodGet, "/accounts/{" + AccountIDPathParam + "}", c.GetAccount},
		{http.MethodGet, "/accounts/executions/{" + ExecutionIDPathParam + "}", c.GetExecution},
		{http.MethodPost, "/accounts/executions/{" + ExecutionIDPathParam + "}/abort", c.AbortExecution},
		{http.MethodPost, "/costs", c.QueryCosts},
		{http.MethodGet, "/costs/{" + AccountIDPathParam + "}", c.ListCostReports},
	}
}
