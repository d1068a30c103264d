package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/manager"
)

type CostReporter interface {
	ReportPeriod(ctx context.Context, start, end time.Time, regions []string, granularity string) (*manager.CostReport, error)
}

// CostReportProcessor builds the stored cost report of the last whole days
// for every inventory account.
type CostReportProcessor struct {
	reporter CostReporter
	cfg      config.Costs
	now      func() time.Time
}

func NewCostReportProcessor(reporter CostReporter, cfg *config.Costs) *CostReportProcessor {
	return &CostReportProcessor{
		reporter: reporter,
		cfg:      *cfg,
		now:      time.Now,
	}
}

func (p *CostReportProcessor) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	days := p.cfg.LookbackDays
	if days <= 0 {
		days = 1
	}

	end := p.now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -days)

	period := []slog.Attr{
		slog.String("periodStart", start.Format(time.DateOnly)),
		slog.String("periodEnd", end.Format(time.DateOnly)),
	}

	log.Info(ctx, "Started processing cost report task", period...)

	report, err := p.reporter.ReportPeriod(ctx, start, end, p.cfg.Regions, p.cfg.Granularity)
	if err != nil {
		log.Error(ctx, "Running cost report", err, period...)
		return errs.Wrap(ErrRunningTask, err)
	}

	log.Info(ctx, "Cost report task completed", append(period,
		slog.Int("accounts", len(report.Accounts)),
		slog.Float64("total", report.Total),
	)...)

	return nil
}

func (p *CostReportProcessor) TaskType() string {
	return config.TypeCostReport
}
