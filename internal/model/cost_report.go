package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CostReport is the aggregated spend of one GovCloud account over a period.
type CostReport struct {
	AutoTimeModel

	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AwsAccountID   string          `gorm:"type:varchar(12);not null;uniqueIndex:idx_cost_reports_period"`
	PeriodStart    time.Time       `gorm:"not null;uniqueIndex:idx_cost_reports_period"`
	PeriodEnd      time.Time       `gorm:"not null"`
	Total          float64         `gorm:"not null"`
	Currency       string          `gorm:"type:varchar(8);not null"`
	Regions        json.RawMessage `gorm:"type:jsonb"`
	SkippedRegions json.RawMessage `gorm:"type:jsonb"`
}

func (CostReport) TableName() string { return "cost_reports" }
