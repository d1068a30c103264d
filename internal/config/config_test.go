package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/govlink/govlink/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		Workflow: config.Workflow{
			Enabled:      true,
			PollInterval: 5 * time.Second,
			StackSetWait: 2 * time.Minute,
			Timeout:      40 * time.Minute,
			StepTimeout:  2 * time.Minute,
		},
		AWS:    config.AWS{Region: "us-gov-west-1"},
		Bridge: config.Bridge{BaseURL: "https://bridge.example.com"},
		Organizations: config.Organizations{
			EntryOUID:  "ou-abcd-entry",
			AcceptMode: config.AcceptModeDirect,
		},
		Inventory: config.Inventory{
			OrgManagementAccountID: "111111111111",
			HubAccountID:           "222222222222",
			BridgeAccountID:        "333333333333",
		},
		Events: config.Events{Type: config.EventsTypeLog},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		err    error
	}{
		{
			name:   "Valid config",
			mutate: func(_ *config.Config) {},
		},
		{
			name: "Unknown periodic task",
			mutate: func(c *config.Config) {
				c.Scheduler.Tasks = []config.Task{{TaskType: "unknown:task"}}
			},
			err: config.ErrNonDefinedTaskType,
		},
		{
			name: "Repeated periodic task",
			mutate: func(c *config.Config) {
				c.Scheduler.Tasks = []config.Task{
					{TaskType: config.TypeCostReport},
					{TaskType: config.TypeCostReport},
				}
			},
			err: config.ErrRepeatedTaskType,
		},
		{
			name: "Missing reserved account",
			mutate: func(c *config.Config) {
				c.Inventory.HubAccountID = ""
			},
			err: config.ErrReservedAccountMissing,
		},
		{
			name: "Zero poll interval",
			mutate: func(c *config.Config) {
				c.Workflow.PollInterval = 0
			},
			err: config.ErrNonPositiveDuration,
		},
		{
			name: "Missing bridge URL with workflow enabled",
			mutate: func(c *config.Config) {
				c.Bridge.BaseURL = ""
			},
			err: config.ErrBridgeEmptyBaseURL,
		},
		{
			name: "Missing bridge URL with workflow disabled",
			mutate: func(c *config.Config) {
				c.Workflow.Enabled = false
				c.Bridge.BaseURL = ""
			},
		},
		{
			name: "Unknown accept mode",
			mutate: func(c *config.Config) {
				c.Organizations.AcceptMode = "telepathy"
			},
			err: config.ErrUnknownAcceptMode,
		},
		{
			name: "EventBridge without bus",
			mutate: func(c *config.Config) {
				c.Events.Type = config.EventsTypeEventBridge
			},
			err: config.ErrEventBusEmpty,
		},
		{
			name: "AMQP without target",
			mutate: func(c *config.Config) {
				c.Events.Type = config.EventsTypeAMQP
				c.Events.AMQP.URL = "amqp://localhost:5672"
			},
			err: config.ErrAMQPEmptyTarget,
		},
		{
			name: "Unknown events type",
			mutate: func(c *config.Config) {
				c.Events.Type = "carrier-pigeon"
			},
			err: config.ErrUnknownEventsType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tt.err)
			assert.ErrorIs(t, err, config.ErrConfigurationValuesError)
		})
	}
}

func TestInventory_ReservedAccountIDs(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t,
		[]string{"111111111111", "222222222222", "333333333333"},
		cfg.Inventory.ReservedAccountIDs(),
	)
}

func TestQueueFor(t *testing.T) {
	t.Run("Should route workflow tasks to the workflow queue", func(t *testing.T) {
		assert.Equal(t, config.QueueWorkflow, config.QueueFor(config.TypeWorkflowAdvance))
		assert.Equal(t, config.QueueWorkflow, config.QueueFor(config.TypeWorkflowTimeout))
	})

	t.Run("Should route periodic jobs to the maintenance queue", func(t *testing.T) {
		assert.Equal(t, config.QueueMaintenance, config.QueueFor(config.TypeCostReport))
		assert.Equal(t, config.QueueMaintenance, config.QueueFor(config.TypeLinkReconcile))
	})

	t.Run("Should serve every routed queue", func(t *testing.T) {
		for _, q := range []string{config.QueueWorkflow, config.QueueMaintenance} {
			assert.Positive(t, config.QueuePriorities[q])
		}
	})
}
