package manager

import "time"

func (m *AccountManager) SetRetryDelay(d time.Duration) {
	m.delay = d
}

func (m *AccountManager) SetClock(now func() time.Time) {
	m.now = now
}
