package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/metrics"
)

const (
	DefaultService = "execute-api"
	DefaultTimeout = 30 * time.Second

	costInfoPath          = "/cost-info"
	accountsPath          = "/govcloud-accounts"
	acceptInvitationPath  = "/govcloud-accounts/accept-invitation"
	maxErrorBodyBytes     = 64 << 10
	opQueryCost           = "query_cost"
	opCreateAccount       = "create_account"
	opListAccounts        = "list_accounts"
	opGetAccountStatus    = "get_account_status"
	opAcceptInvitation    = "accept_invitation"
	contentTypeHeader     = "Content-Type"
	contentTypeJSONHeader = "application/json"
)

// CertificateRefs locate the client certificate bundle and the Roles Anywhere identifiers.
type CertificateRefs struct {
	SecretID       string
	TrustAnchorARN string
	ProfileARN     string
	RoleARN        string
}

func (c CertificateRefs) complete() bool {
	return c.SecretID != "" && c.TrustAnchorARN != "" && c.ProfileARN != "" && c.RoleARN != ""
}

func (c CertificateRefs) empty() bool {
	return c == CertificateRefs{}
}

// Config selects the bridge endpoint and exactly one authentication mode.
type Config struct {
	BaseURL        string
	Region         string
	Service        string
	Timeout        time.Duration
	APIKeySecretID string
	Certificate    *CertificateRefs
}

func (c Config) validate() error {
	if c.BaseURL == "" {
		return ErrEmptyBaseURL
	}

	hasKey := c.APIKeySecretID != ""
	hasCert := c.Certificate != nil && !c.Certificate.empty()

	switch {
	case hasKey && hasCert, !hasKey && !hasCert:
		return ErrInvalidAuthConfig
	case hasCert && !c.Certificate.complete():
		return ErrInvalidAuthConfig
	}

	return nil
}

type options struct {
	secrets    SecretStore
	exchanger  CredentialExchanger
	credCache  *CredentialCache
	keyCache   *APIKeyCache
	httpClient *http.Client
	now        func() time.Time
}

type Option func(*options)

func WithSecretStore(s SecretStore) Option {
	return func(o *options) { o.secrets = s }
}

func WithCredentialExchanger(e CredentialExchanger) Option {
	return func(o *options) { o.exchanger = e }
}

func WithCredentialCache(c *CredentialCache) Option {
	return func(o *options) { o.credCache = c }
}

func WithAPIKeyCache(c *APIKeyCache) Option {
	return func(o *options) { o.keyCache = c }
}

// WithHTTPClient overrides the pooled client; its transport is wrapped for authentication.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Client calls the commercial partition account API from GovCloud.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	err := cfg.validate()
	if err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errs.Wrap(ErrEmptyBaseURL, err)
	}

	o := &options{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.secrets == nil {
		return nil, ErrMissingSecretStore
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}

	base := httpClient.Transport
	if base == nil {
		base = cleanhttp.DefaultPooledTransport()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	var transport http.RoundTripper

	if cfg.APIKeySecretID != "" {
		if o.keyCache == nil {
			o.keyCache = NewAPIKeyCache()
		}

		transport = &apiKeyTransport{
			base:     base,
			secrets:  o.secrets,
			secretID: cfg.APIKeySecretID,
			cache:    o.keyCache,
		}
	} else {
		if o.credCache == nil {
			o.credCache = NewCredentialCache()
		}

		if o.exchanger == nil {
			o.exchanger = NewSigningHelper(DefaultHelperPath)
		}

		service := cfg.Service
		if service == "" {
			service = DefaultService
		}

		transport = &signingTransport{
			base:      base,
			signer:    v4.NewSigner(),
			secrets:   o.secrets,
			cert:      *cfg.Certificate,
			exchanger: o.exchanger,
			cache:     o.credCache,
			region:    cfg.Region,
			service:   service,
			now:       o.now,
		}
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport:     transport,
			CheckRedirect: httpClient.CheckRedirect,
			Jar:           httpClient.Jar,
			Timeout:       timeout,
		},
	}, nil
}

// QueryCost returns the cost of one account in one region.
// A 404 yields *AccountMappingNotFoundError.
func (c *Client) QueryCost(ctx context.Context, q CostQuery) (*CostResult, error) {
	var res CostResult

	status, body, err := c.do(ctx, opQueryCost, http.MethodPost, costInfoPath, q, &res)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, &AccountMappingNotFoundError{LinkedAccountID: q.LinkedAccountID, Body: body}
		}

		return nil, err
	}

	return &res, nil
}

// CreateAccount starts asynchronous creation of a linked GovCloud account.
func (c *Client) CreateAccount(ctx context.Context, accountName, email, roleName string) (*CreateAccountResult, error) {
	var res CreateAccountResult

	_, _, err := c.do(ctx, opCreateAccount, http.MethodPost, accountsPath, createAccountRequest{
		AccountName: accountName,
		Email:       email,
		RoleName:    roleName,
	}, &res)
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// ListAccounts returns the linked accounts that already have a GovCloud account id.
func (c *Client) ListAccounts(ctx context.Context) ([]LinkedAccount, error) {
	var res listAccountsResponse

	_, _, err := c.do(ctx, opListAccounts, http.MethodGet, accountsPath, nil, &res)
	if err != nil {
		return nil, err
	}

	accounts := make([]LinkedAccount, 0, len(res.Accounts))
	for _, a := range res.Accounts {
		if a.GovCloudAccountID != "" {
			accounts = append(accounts, a)
		}
	}

	return accounts, nil
}

// GetAccountStatus returns the creation status behind requestID.
func (c *Client) GetAccountStatus(ctx context.Context, requestID string) (*AccountStatus, error) {
	var res AccountStatus

	_, _, err := c.do(ctx, opGetAccountStatus, http.MethodGet, accountsPath+"/"+url.PathEscape(requestID), nil, &res)
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// AcceptInvitation asks the commercial side to accept handshakeID on behalf of the GovCloud account.
func (c *Client) AcceptInvitation(ctx context.Context, req AcceptInvitationRequest) (*AcceptInvitationResult, error) {
	var res AcceptInvitationResult

	_, _, err := c.do(ctx, opAcceptInvitation, http.MethodPost, acceptInvitationPath, req, &res)
	if err != nil {
		return nil, err
	}

	return &res, nil
}

// do sends one request and decodes a 2xx body into out. On a non-2xx response it
// returns the status and body alongside an *APIError.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) (int, string, error) {
	var body io.Reader = http.NoBody

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, "", errs.Wrap(ErrBuildRequest, err)
		}

		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return 0, "", errs.Wrap(ErrBuildRequest, err)
	}

	req.Header.Set("Accept", contentTypeJSONHeader)

	if in != nil {
		req.Header.Set(contentTypeHeader, contentTypeJSONHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BridgeRequests.WithLabelValues(op, metrics.StatusClass(0)).Inc()
		return 0, "", err
	}
	defer resp.Body.Close()

	metrics.BridgeRequests.WithLabelValues(op, metrics.StatusClass(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		log.Debug(ctx, "Bridge request rejected",
			slog.String("operation", op),
			slog.Int("status", resp.StatusCode),
		)

		return resp.StatusCode, string(raw), &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return resp.StatusCode, "", nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil && !errors.Is(err, io.EOF) {
		return resp.StatusCode, "", errs.Wrap(ErrDecodeResponse, err)
	}

	return resp.StatusCode, "", nil
}
