package aws

import (
	"golang.org/x/time/rate"
)

// NewOrganizationsClientForTests - new client for unit tests; member calls use member.
func NewOrganizationsClientForTests(internal, member organizationsClient) *OrganizationsClient {
	return &OrganizationsClient{
		internalClient: internal,
		limiter:        rate.NewLimiter(rate.Inf, 1),
		memberClient: func(string) organizationsClient {
			return member
		},
	}
}

// NewSecretsClientForTests - new client for unit tests
func NewSecretsClientForTests(internal secretsManagerClient) *SecretsClient {
	return &SecretsClient{internalClient: internal}
}

// NewEventBridgeClientForTests - new client for unit tests
func NewEventBridgeClientForTests(internal eventBridgeClient, busName string) *EventBridgeClient {
	return &EventBridgeClient{internalClient: internal, busName: busName}
}
