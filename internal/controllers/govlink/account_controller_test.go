package govlink_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govlink/govlink/internal/apierrors"
	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/controllers/govlink"
	"github.com/govlink/govlink/internal/events"
	"github.com/govlink/govlink/internal/manager"
	"github.com/govlink/govlink/internal/model"
	"github.com/govlink/govlink/internal/testutils"
	"github.com/govlink/govlink/utils/ptr"
)

func setupAccounts(t *testing.T) http.Handler {
	t.Helper()

	r, _ := testutils.NewTestRepo(t)

	testutils.CreateTestEntities(t.Context(), t, r,
		testutils.NewAccount(func(a *model.Account) {
			a.AwsAccountID = "100000000001"
			a.CommercialLinkedAccountID = ptr.PointTo("200000000001")
		}),
		testutils.NewAccount(func(a *model.Account) {
			a.AwsAccountID = "100000000002"
			a.Status = model.AccountActive
		}),
		testutils.NewAccount(func(a *model.Account) {
			a.AwsAccountID = "100000000003"
		}),
	)

	accounts := manager.NewAccountManager(r, events.NewLogEmitter("govlink.test"), &config.Inventory{
		OrgManagementAccountID: testutils.TestOrgManagementAccountID,
		HubAccountID:           testutils.TestHubAccountID,
		BridgeAccountID:        testutils.TestBridgeAccountID,
	}, &config.Events{Retries: 1})

	return newServer(govlink.NewAPIController(accounts))
}

func TestListAccounts(t *testing.T) {
	h := setupAccounts(t)

	tests := []struct {
		name      string
		query     string
		wantIDs   []string
		wantCount int
	}{
		{
			name:      "Should list every account ordered by id",
			wantIDs:   []string{"100000000001", "100000000002", "100000000003"},
			wantCount: 3,
		},
		{
			name:      "Should filter by status",
			query:     "?status=Active",
			wantIDs:   []string{"100000000002"},
			wantCount: 1,
		},
		{
			name:      "Should filter unlinked accounts",
			query:     "?unlinked=true",
			wantIDs:   []string{"100000000002", "100000000003"},
			wantCount: 2,
		},
		{
			name:      "Should page with limit and offset",
			query:     "?limit=1&offset=1",
			wantIDs:   []string{"100000000002"},
			wantCount: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodGet, accountsPath+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code)

			resp := decode[govlink.AccountListResponse](t, w)
			assert.Equal(t, tt.wantCount, resp.Count)

			ids := make([]string, 0, len(resp.Accounts))
			for _, a := range resp.Accounts {
				ids = append(ids, a.AwsAccountID)
			}

			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	for _, query := range []string{"?status=Unknown", "?unlinked=perhaps", "?limit=0", "?limit=abc", "?offset=-1"} {
		t.Run("Should reject query "+query, func(t *testing.T) {
			w := do(t, h, http.MethodGet, accountsPath+query, nil)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, apierrors.ValidationErr, decode[problem](t, w).Type)
		})
	}
}

func TestGetAccount(t *testing.T) {
	h := setupAccounts(t)

	t.Run("Should return linked account", func(t *testing.T) {
		w := do(t, h, http.MethodGet, accountsPath+"/100000000001", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[govlink.AccountResponse](t, w)
		assert.Equal(t, "100000000001", resp.AwsAccountID)
		require.NotNil(t, resp.CommercialLinkedAccountID)
		assert.Equal(t, "200000000001", *resp.CommercialLinkedAccountID)
		assert.Equal(t, string(model.AccountAvailable), resp.Status)
	})

	t.Run("Should omit linkage of unlinked account", func(t *testing.T) {
		w := do(t, h, http.MethodGet, accountsPath+"/100000000003", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, decode[govlink.AccountResponse](t, w).CommercialLinkedAccountID)
	})

	t.Run("Should answer 404 for unknown account", func(t *testing.T) {
		w := do(t, h, http.MethodGet, accountsPath+"/100000000009", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "ACCOUNT_NOT_FOUND", decode[problem](t, w).Type)
	})

	t.Run("Should answer 400 for malformed account id", func(t *testing.T) {
		w := do(t, h, http.MethodGet, accountsPath+"/12345", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
