package bridge

import "context"

// NewSigningHelperForTests - helper whose child process is replaced by run.
func NewSigningHelperForTests(run func(ctx context.Context, name string, args ...string) ([]byte, error)) *SigningHelper {
	return &SigningHelper{Path: DefaultHelperPath, run: run}
}

// ParseCertificateBundle - exposes the bundle decoder used by the signing transport.
func ParseCertificateBundle(raw string) (string, string, error) {
	b, err := parseCertificateBundle(raw)

	return b.Certificate, b.PrivateKey, err
}
