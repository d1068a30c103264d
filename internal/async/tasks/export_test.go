package tasks

import "time"

func (p *CostReportProcessor) SetClock(now func() time.Time) {
	p.now = now
}
