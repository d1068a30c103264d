package app

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
	"gorm.io/gorm"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"

	"github.com/govlink/govlink/internal/bridge"
	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/db"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/events"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/manager"
	"github.com/govlink/govlink/internal/repo"
	"github.com/govlink/govlink/internal/repo/sql"
	"github.com/govlink/govlink/internal/steps"
	"github.com/govlink/govlink/internal/workflow"
	"github.com/govlink/govlink/providers/clients/aws"
)

var (
	ErrStartDB       = errors.New("failed to start database connection")
	ErrLoadAWSConfig = errors.New("failed to load AWS config")
	ErrBuildBridge   = errors.New("failed to build bridge client")
	ErrBuildEmitter  = errors.New("failed to build event emitter")
	ErrCloseDB       = errors.New("failed to close database connection")
)

// Components are the long-lived collaborators shared by the API server and
// the task worker. Bridge, Costs and Engine are nil when not configured.
type Components struct {
	DB       *gorm.DB
	Repo     repo.Repo
	Emitter  events.Emitter
	Accounts *manager.AccountManager
	Costs    *manager.CostManager
	Bridge   *bridge.Client
	Engine   *workflow.Engine
}

// New opens the database and builds every component cfg enables.
func New(ctx context.Context, cfg *config.Config) (*Components, error) {
	dbCon, err := db.StartDBConnection(ctx, cfg.Database, cfg.DatabaseReplicas)
	if err != nil {
		return nil, errs.Wrap(ErrStartDB, err)
	}

	c, err := Build(ctx, cfg, sql.NewRepository(dbCon))
	if err != nil {
		closeDB(ctx, dbCon)
		return nil, err
	}

	c.DB = dbCon

	return c, nil
}

// Build wires the components on top of an existing repository.
func Build(ctx context.Context, cfg *config.Config, r repo.Repo) (*Components, error) {
	c := &Components{Repo: r}

	needsAWS := cfg.Workflow.Enabled || cfg.Bridge.BaseURL != "" || cfg.Events.Type == config.EventsTypeEventBridge

	var awsCfg awssdk.Config

	if needsAWS {
		var err error

		awsCfg, err = aws.LoadConfig(ctx, cfg.AWS.Region, aws.BaseEndpoint(cfg.AWS.BaseEndpoint))
		if err != nil {
			return nil, errs.Wrap(ErrLoadAWSConfig, err)
		}
	}

	var publisher events.Publisher
	if cfg.Events.Type == config.EventsTypeEventBridge {
		publisher = aws.NewEventBridgeClient(awsCfg, cfg.Events.BusName)
	}

	emitter, err := events.New(ctx, &cfg.Events, publisher)
	if err != nil {
		return nil, errs.Wrap(ErrBuildEmitter, err)
	}

	c.Emitter = emitter
	c.Accounts = manager.NewAccountManager(r, emitter, &cfg.Inventory, &cfg.Events)

	if cfg.Bridge.BaseURL != "" {
		c.Bridge, err = NewBridgeClient(&cfg.Bridge, aws.NewSecretsClient(awsCfg))
		if err != nil {
			return nil, err
		}

		c.Costs = manager.NewCostManager(c.Bridge, r, c.Accounts, emitter)
	}

	if cfg.Workflow.Enabled {
		if c.Bridge == nil {
			return nil, errs.Wrap(ErrBuildBridge, config.ErrBridgeEmptyBaseURL)
		}

		orgs := NewOrganizationsClient(cfg, awsCfg)
		c.Engine = workflow.NewEngine(r, NewSteps(cfg, c.Bridge, orgs, c.Accounts), &cfg.Workflow)
	}

	log.Info(ctx, "Components built")

	return c, nil
}

// NewBridgeClient builds the bridge client for the authentication mode cfg selects.
func NewBridgeClient(cfg *config.Bridge, secrets bridge.SecretStore) (*bridge.Client, error) {
	bc := bridge.Config{
		BaseURL:        cfg.BaseURL,
		Region:         cfg.Region,
		Service:        cfg.Service,
		Timeout:        cfg.Timeout,
		APIKeySecretID: cfg.APIKeySecretID,
	}

	opts := []bridge.Option{bridge.WithSecretStore(secrets)}

	if cfg.Certificate != nil {
		bc.Certificate = &bridge.CertificateRefs{
			SecretID:       cfg.Certificate.SecretID,
			TrustAnchorARN: cfg.Certificate.TrustAnchorARN,
			ProfileARN:     cfg.Certificate.ProfileARN,
			RoleARN:        cfg.Certificate.RoleARN,
		}

		opts = append(opts, bridge.WithCredentialExchanger(bridge.NewSigningHelper(cfg.HelperPath)))
	}

	client, err := bridge.NewClient(bc, opts...)
	if err != nil {
		return nil, errs.Wrap(ErrBuildBridge, err)
	}

	return client, nil
}

// NewOrganizationsClient acts through the delegated organization role, rate
// limited by cfg.Organizations.
func NewOrganizationsClient(cfg *config.Config, awsCfg awssdk.Config) *aws.OrganizationsClient {
	return aws.NewOrganizationsClient(
		awsCfg,
		cfg.AWS.OrgRoleARN,
		cfg.AWS.Partition,
		cfg.AWS.TargetRoleName,
		rate.NewLimiter(rate.Limit(cfg.Organizations.RateLimit), cfg.Organizations.Burst),
	)
}

// Organizations is every Organizations operation used by the step executors.
type Organizations interface {
	steps.Organizations
	steps.MemberOrganizations
}

// NewSteps binds the step executors to their collaborators.
func NewSteps(cfg *config.Config, b *bridge.Client, orgs Organizations, registrar steps.Registrar) workflow.Steps {
	var accepter steps.HandshakeAccepter = &steps.DirectAccepter{Orgs: orgs}
	if cfg.Organizations.AcceptMode == config.AcceptModeBridge {
		accepter = &steps.BridgeAccepter{Bridge: b, Region: cfg.AWS.Region}
	}

	return workflow.Steps{
		InitiateCreation: &steps.InitiateCreation{Bridge: b, RoleName: cfg.Workflow.ProvisioningRoleName},
		CheckStatus:      &steps.CheckStatus{Bridge: b},
		SendInvitation:   &steps.SendInvitation{Orgs: orgs},
		AcceptInvitation: &steps.AcceptInvitation{Accepter: accepter, Orgs: orgs},
		MoveToEntryOU:    &steps.MoveToEntryOU{Orgs: orgs, EntryOUID: cfg.Organizations.EntryOUID},
		RegisterInISB:    &steps.RegisterInISB{Registrar: registrar},
	}
}

// Close releases the emitter and the database connection.
func (c *Components) Close(ctx context.Context) error {
	var err error

	if c.Emitter != nil {
		err = c.Emitter.Close(ctx)
	}

	if c.DB != nil {
		sqlDB, dbErr := c.DB.DB()
		if dbErr == nil {
			dbErr = sqlDB.Close()
		}

		if dbErr != nil {
			err = errors.Join(err, errs.Wrap(ErrCloseDB, dbErr))
		}
	}

	return err
}

func closeDB(ctx context.Context, dbCon *gorm.DB) {
	sqlDB, err := dbCon.DB()
	if err == nil {
		err = sqlDB.Close()
	}

	if err != nil {
		log.Error(ctx, "Failed to close database connection", err)
	}
}
