package bridge

import (
	"sync"
	"time"
)

// RefreshWindow is how long before expiry a cached credential bundle is replaced.
const RefreshWindow = 5 * time.Minute

// Credentials is a time-boxed signed-credential bundle.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Expiration      time.Time
}

// CredentialCache holds the last exchanged credential bundle for the process.
type CredentialCache struct {
	mu    sync.Mutex
	creds *Credentials
}

func NewCredentialCache() *CredentialCache {
	return &CredentialCache{}
}

// Get returns the cached bundle while it is valid for more than RefreshWindow past now.
func (c *CredentialCache) Get(now time.Time) (Credentials, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.creds == nil || c.creds.Expiration.Sub(now) <= RefreshWindow {
		return Credentials{}, false
	}

	return *c.creds, true
}

func (c *CredentialCache) Set(creds Credentials) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.creds = &creds
}

// APIKeyCache holds the shared secret for the process lifetime.
type APIKeyCache struct {
	mu  sync.RWMutex
	key string
}

func NewAPIKeyCache() *APIKeyCache {
	return &APIKeyCache{}
}

func (c *APIKeyCache) Get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.key, c.key != ""
}

func (c *APIKeyCache) Set(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.key = key
}
