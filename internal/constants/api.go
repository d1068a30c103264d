package constants

const (
	APIName = "GOVLINK"

	DefaultConfigPath1 = "/etc/govlink"
	DefaultConfigPath2 = "$HOME/.govlink"

	APIVersionedNamespace = "/govlink/v1"
)

const (
	// ReservedAccountCount is the number of administrative accounts never handed to inventory.
	ReservedAccountCount = 3

	AWSAccountIDLength = 12
)
