package model

import (
	"time"

	"gorm.io/gorm"
)

// AutoTimeModel is embedded by every govlink table. Timestamps are stored in
// UTC and CreatedAt is preserved when a caller sets it, so imported accounts
// keep their original registration time.
type AutoTimeModel struct {
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *AutoTimeModel) BeforeCreate(_ *gorm.DB) error {
	m.stamp(true)
	return nil
}

func (m *AutoTimeModel) BeforeUpdate(_ *gorm.DB) error {
	m.stamp(false)
	return nil
}

func (m *AutoTimeModel) stamp(creating bool) {
	now := time.Now().UTC()

	if creating {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		} else {
			m.CreatedAt = m.CreatedAt.UTC()
		}
	}

	m.UpdatedAt = now
}
