package async

import (
	"time"

	"github.com/hibiken/asynq"

	"github.com/govlink/govlink/internal/config"
)

// ScheduledTaskConfigProvider feeds the configured periodic tasks to the
// asynq periodic task manager.
type ScheduledTaskConfigProvider struct {
	Config *config.Config
}

// uniqueTTL bounds how long a pending periodic task blocks an identical one.
const uniqueTTL = 5 * time.Minute

// GetConfigs returns one periodic task per configured task type known to the scheduler.
func (p *ScheduledTaskConfigProvider) GetConfigs() ([]*asynq.PeriodicTaskConfig, error) {
	tasks := p.Config.Scheduler.Tasks

	configs := make([]*asynq.PeriodicTaskConfig, 0, len(tasks))
	for _, cfg := range tasks {
		if _, ok := config.PeriodicTasks[cfg.TaskType]; !ok {
			continue
		}

		configs = append(configs, &asynq.PeriodicTaskConfig{
			Cronspec: cfg.Cronspec,
			Task: asynq.NewTask(
				cfg.TaskType,
				nil,
				asynq.MaxRetry(cfg.Retries),
				asynq.Queue(config.QueueFor(cfg.TaskType)),
			),
			Opts: []asynq.Option{asynq.Unique(uniqueTTL)},
		})
	}

	return configs, nil
}
