package config

import (
	"errors"
	"slices"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/govlink/govlink/internal/errs"
)

var (
	ErrConfigurationValuesError = errors.New("configuration value error")
	ErrNonDefinedTaskType       = errors.New("task type is unknown")
	ErrRepeatedTaskType         = errors.New("task type is specified more than once")
	ErrLoadMTLSConfig           = errors.New("failed to load mTLS config")

	ErrBridgeEmptyBaseURL     = errors.New("bridge base URL must be specified")
	ErrAWSEmptyRegion         = errors.New("AWS region must be specified")
	ErrEmptyEntryOU           = errors.New("entry organizational unit must be specified")
	ErrUnknownAcceptMode      = errors.New("unknown invitation accept mode")
	ErrReservedAccountMissing = errors.New("all reserved administrative account IDs must be specified")
	ErrNonPositiveDuration    = errors.New("workflow durations must be positive")
	ErrUnknownEventsType      = errors.New("unknown events emitter type")
	ErrEventBusEmpty          = errors.New("event bus name must be specified")
	ErrAMQPEmptyURL           = errors.New("AMQP URL must be specified")
	ErrAMQPEmptyTarget        = errors.New("AMQP target must be specified")
)

// Config holds all application configuration parameters
type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash"`

	Database         Database      `yaml:"database"`
	DatabaseReplicas []Database    `yaml:"databaseReplicas"`
	Scheduler        Scheduler     `yaml:"scheduler"`
	HTTP             HTTPServer    `yaml:"http"`
	AWS              AWS           `yaml:"aws"`
	Bridge           Bridge        `yaml:"bridge"`
	Organizations    Organizations `yaml:"organizations"`
	Workflow         Workflow      `yaml:"workflow"`
	Inventory        Inventory     `yaml:"inventory"`
	Events           Events        `yaml:"events"`
	Costs            Costs         `yaml:"costs"`
}

func (c *Config) Validate() error {
	validators := []interface{ Validate() error }{
		&c.Scheduler,
		&c.Workflow,
		&c.Inventory,
		&c.Events,
	}

	if c.Workflow.Enabled {
		validators = append(validators, &c.AWS, &c.Bridge, &c.Organizations)
	}

	for _, v := range validators {
		err := v.Validate()
		if err != nil {
			return errs.Wrap(ErrConfigurationValuesError, err)
		}
	}

	return nil
}

// Scheduler holds the task queue connection, the periodic tasks and the
// worker concurrency. Zero Concurrency lets asynq pick one per CPU.
type Scheduler struct {
	TaskQueue   Redis
	Tasks       []Task
	Concurrency int `yaml:"concurrency"`
}

func (s *Scheduler) Validate() error {
	checkedTasks := make(map[string]struct{}, len(s.Tasks))
	for _, task := range s.Tasks {
		_, found := PeriodicTasks[task.TaskType]
		if !found {
			return errs.Wrapf(ErrNonDefinedTaskType, task.TaskType)
		}

		_, found = checkedTasks[task.TaskType]
		if found {
			return errs.Wrapf(ErrRepeatedTaskType, task.TaskType)
		}

		checkedTasks[task.TaskType] = struct{}{}
	}

	return nil
}

// Task holds a periodic task config
type Task struct {
	Cronspec string
	TaskType string
	Retries  int
}

// Redis holds Redis client config
type Redis struct {
	Host      commoncfg.SourceRef `yaml:"host"`
	Port      string              `yaml:"port"`
	ACL       RedisACL            `yaml:"acl"`
	SecretRef commoncfg.SecretRef
}

type RedisACL struct {
	Enabled  bool                `yaml:"enabled"`
	Password commoncfg.SourceRef `yaml:"password"`
	Username commoncfg.SourceRef `yaml:"username"`
}

// Database holds database config
type Database struct {
	Name     string              `yaml:"name"`
	Port     string              `yaml:"port"`
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Secret   commoncfg.SourceRef `yaml:"secret"`
	SSLMode  string              `yaml:"sslMode"`
	Pool     DatabasePool        `yaml:"pool"`
	Migrator Migrator            `yaml:"migrator"`
}

// DatabasePool bounds the connections held by one process. Zero keeps the
// database/sql default.
type DatabasePool struct {
	MaxOpenConns int `yaml:"maxOpenConns"`
	MaxIdleConns int `yaml:"maxIdleConns"`
}

// Migrator points to the goose migration directories
type Migrator struct {
	Schema string `yaml:"schema" default:"migrations/schema"`
	Data   string `yaml:"data" default:"migrations/data"`
}

// HTTPServer holds http server config
type HTTPServer struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

// AWS holds the GovCloud partition settings used by the step executors.
type AWS struct {
	Region string `yaml:"region" default:"us-gov-west-1"`
	// OrgRoleARN is assumed to reach the GovCloud organization management account.
	OrgRoleARN string `yaml:"orgRoleArn"`
	// TargetRoleName is assumed inside a newly linked account to accept its handshake.
	TargetRoleName string `yaml:"targetRoleName" default:"OrganizationAccountAccessRole"`
	Partition      string `yaml:"partition" default:"aws-us-gov"`
	// BaseEndpoint overrides every AWS endpoint, used against local emulators.
	BaseEndpoint string `yaml:"baseEndpoint"`
}

func (a *AWS) Validate() error {
	if a.Region == "" {
		return ErrAWSEmptyRegion
	}

	return nil
}

// Bridge holds the commercial partition bridge API settings.
// Exactly one of APIKeySecretID or Certificate must be set.
type Bridge struct {
	BaseURL        string             `yaml:"baseUrl"`
	Region         string             `yaml:"region" default:"us-east-1"`
	Service        string             `yaml:"service" default:"execute-api"`
	APIKeySecretID string             `yaml:"apiKeySecretId"`
	Certificate    *BridgeCertificate `yaml:"certificate"`
	HelperPath     string             `yaml:"helperPath" default:"aws_signing_helper"`
	Timeout        time.Duration      `yaml:"timeout" default:"30s"`
}

// BridgeCertificate references the certificate bundle exchanged for signed credentials.
type BridgeCertificate struct {
	SecretID       string `yaml:"secretId"`
	TrustAnchorARN string `yaml:"trustAnchorArn"`
	ProfileARN     string `yaml:"profileArn"`
	RoleARN        string `yaml:"roleArn"`
}

func (b *Bridge) Validate() error {
	if b.BaseURL == "" {
		return ErrBridgeEmptyBaseURL
	}

	return nil
}

const (
	AcceptModeDirect = "direct"
	AcceptModeBridge = "bridge"
)

// Organizations holds the GovCloud organization settings.
type Organizations struct {
	EntryOUID  string  `yaml:"entryOuId"`
	RateLimit  float64 `yaml:"rateLimit" default:"2"`
	Burst      int     `yaml:"burst" default:"2"`
	AcceptMode string  `yaml:"acceptMode" default:"direct"`
}

func (o *Organizations) Validate() error {
	if o.EntryOUID == "" {
		return ErrEmptyEntryOU
	}

	if o.AcceptMode != AcceptModeDirect && o.AcceptMode != AcceptModeBridge {
		return errs.Wrapf(ErrUnknownAcceptMode, o.AcceptMode)
	}

	return nil
}

// Workflow holds the account creation workflow timings.
type Workflow struct {
	// Enabled determines if the orchestrator is wired into the API server.
	Enabled bool `yaml:"enabled"`

	PollInterval time.Duration `yaml:"pollInterval" default:"5s"`
	// StackSetWait is a fixed delay letting the entry OU stack set instances land.
	StackSetWait time.Duration `yaml:"stackSetWait" default:"2m"`
	Timeout      time.Duration `yaml:"timeout" default:"40m"`
	StepTimeout  time.Duration `yaml:"stepTimeout" default:"2m"`

	ExecutionARNPrefix   string `yaml:"executionArnPrefix" default:"arn:aws-us-gov:states:us-gov-west-1:000000000000:execution:govlink-account-creation"`
	ProvisioningRoleName string `yaml:"provisioningRoleName" default:"OrganizationAccountAccessRole"`
	EnqueueRetries       uint   `yaml:"enqueueRetries" default:"3"`
}

func (w *Workflow) Validate() error {
	if w.PollInterval <= 0 || w.StackSetWait <= 0 || w.Timeout <= 0 || w.StepTimeout <= 0 {
		return ErrNonPositiveDuration
	}

	return nil
}

// Inventory holds the administrative accounts that can never be registered.
type Inventory struct {
	OrgManagementAccountID string `yaml:"orgManagementAccountId"`
	HubAccountID           string `yaml:"hubAccountId"`
	BridgeAccountID        string `yaml:"bridgeAccountId"`
}

func (i *Inventory) ReservedAccountIDs() []string {
	return []string{i.OrgManagementAccountID, i.HubAccountID, i.BridgeAccountID}
}

func (i *Inventory) Validate() error {
	if slices.Contains(i.ReservedAccountIDs(), "") {
		return ErrReservedAccountMissing
	}

	return nil
}

const (
	EventsTypeLog         = "log"
	EventsTypeEventBridge = "eventbridge"
	EventsTypeAMQP        = "amqp"
)

// Events holds domain event emitter config.
type Events struct {
	Type    string `yaml:"type" default:"log"`
	BusName string `yaml:"busName"`
	Source  string `yaml:"source" default:"govlink"`
	AMQP    AMQP   `yaml:"amqp"`
	Retries uint   `yaml:"retries" default:"3"`
}

func (e *Events) Validate() error {
	switch e.Type {
	case EventsTypeLog:
		return nil
	case EventsTypeEventBridge:
		if e.BusName == "" {
			return ErrEventBusEmpty
		}

		return nil
	case EventsTypeAMQP:
		return e.AMQP.validate()
	default:
		return errs.Wrapf(ErrUnknownEventsType, e.Type)
	}
}

type AMQP struct {
	URL       string              `yaml:"url"`
	Target    string              `yaml:"target"`
	SecretRef commoncfg.SecretRef `yaml:"secretRef"`
}

func (a *AMQP) validate() error {
	if a.URL == "" {
		return ErrAMQPEmptyURL
	}

	if a.Target == "" {
		return ErrAMQPEmptyTarget
	}

	return nil
}

// Costs holds the cost aggregation report settings.
type Costs struct {
	Regions     []string `yaml:"regions"`
	Granularity string   `yaml:"granularity" default:"DAILY"`
	// LookbackDays is how many whole days the periodic report covers.
	LookbackDays int `yaml:"lookbackDays" default:"1"`
}
