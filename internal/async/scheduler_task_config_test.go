package async_test

import (
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govlink/govlink/internal/async"
	"github.com/govlink/govlink/internal/config"
)

func TestGetConfigs(t *testing.T) {
	t.Run("Should build periodic tasks from configured tasks", func(t *testing.T) {
		p := async.ScheduledTaskConfigProvider{
			Config: &config.Config{
				Scheduler: config.Scheduler{
					Tasks: []config.Task{
						{TaskType: config.TypeWorkflowTimeout, Cronspec: "* * * * *", Retries: 1},
						{TaskType: config.TypeCostReport, Cronspec: "0 2 * * *", Retries: 3},
					},
				},
			},
		}

		configs, err := p.GetConfigs()
		require.NoError(t, err)
		require.Len(t, configs, 2)

		assert.Equal(t, config.TypeWorkflowTimeout, configs[0].Task.Type())
		assert.Equal(t, "* * * * *", configs[0].Cronspec)
		assert.Equal(t, config.TypeCostReport, configs[1].Task.Type())
		assert.Equal(t, "0 2 * * *", configs[1].Cronspec)

		require.Len(t, configs[1].Opts, 1)
		assert.Equal(t, asynq.UniqueOpt, configs[1].Opts[0].Type())
	})

	t.Run("Should skip task types that are not periodic", func(t *testing.T) {
		p := async.ScheduledTaskConfigProvider{
			Config: &config.Config{
				Scheduler: config.Scheduler{
					Tasks: []config.Task{
						{TaskType: config.TypeWorkflowAdvance, Cronspec: "* * * * *"},
						{TaskType: config.TypeLinkReconcile, Cronspec: "*/10 * * * *"},
					},
				},
			},
		}

		configs, err := p.GetConfigs()
		require.NoError(t, err)
		require.Len(t, configs, 1)
		assert.Equal(t, config.TypeLinkReconcile, configs[0].Task.Type())
	})

	t.Run("Should return no tasks when none configured", func(t *testing.T) {
		p := async.ScheduledTaskConfigProvider{Config: &config.Config{}}

		configs, err := p.GetConfigs()
		require.NoError(t, err)
		assert.Empty(t, configs)
	})
}
