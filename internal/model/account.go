package model

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidAccountStatus = errors.New("account status is not valid")

// AccountStatus is the lifecycle state of a pooled sandbox account.
type AccountStatus string

const (
	AccountAvailable  AccountStatus = "Available"
	AccountActive     AccountStatus = "Active"
	AccountCleanUp    AccountStatus = "CleanUp"
	AccountQuarantine AccountStatus = "Quarantine"
	AccountFrozen     AccountStatus = "Frozen"
)

func (s AccountStatus) Validate() error {
	switch s {
	case AccountAvailable, AccountActive, AccountCleanUp, AccountQuarantine, AccountFrozen:
		return nil
	default:
		return ErrInvalidAccountStatus
	}
}

// Account is an inventory record keyed by the GovCloud account ID.
// CommercialLinkedAccountID is set at most once and never changes afterwards.
type Account struct {
	AutoTimeModel

	AwsAccountID              string          `gorm:"type:varchar(12);primaryKey"`
	Name                      string          `gorm:"type:varchar(255);not null"`
	Email                     string          `gorm:"type:varchar(255)"`
	Status                    AccountStatus   `gorm:"type:varchar(20);not null;index"`
	CommercialLinkedAccountID *string         `gorm:"type:varchar(12);uniqueIndex"`
	RegisteredByExecution     *uuid.UUID      `gorm:"type:uuid"`
	Meta                      json.RawMessage `gorm:"type:jsonb"`
}

func (Account) TableName() string { return "accounts" }

func (a Account) IsLinked() bool {
	return a.CommercialLinkedAccountID != nil && *a.CommercialLinkedAccountID != ""
}
