package crypto

import (
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"time"

	"github.com/govlink/govlink/internal/errs"
)

var (
	ErrNoClientCertificatesFound     = errors.New("no client certificate found")
	ErrMultipleClientCertificates    = errors.New("more than one client certificate found")
	ErrInvalidTypeInCertificateChain = errors.New("certificate chain holds a non certificate block")
	ErrFailedToParseCertificate      = errors.New("failed to parse certificate")
	ErrKeyPairMismatch               = errors.New("private key does not match the client certificate")
	ErrCertificateExpired            = errors.New("client certificate is not valid at this time")
)

// Chain is a PEM certificate chain split into its one leaf and the CAs
// that came with it.
type Chain struct {
	Client      *x509.Certificate
	Authorities []*x509.Certificate
}

// ParseCertificateChain reads every PEM block of data. Exactly one block must
// be a non-CA certificate.
func ParseCertificateChain(data []byte) (*Chain, error) {
	chain := &Chain{}
	clients := 0

	for block, rest := pem.Decode(data); block != nil; block, rest = pem.Decode(rest) {
		if block.Type != PEMArmorCertificate {
			return nil, errs.Wrapf(ErrInvalidTypeInCertificateChain, block.Type)
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, errs.Wrap(ErrFailedToParseCertificate, err)
		}

		if cert.IsCA {
			chain.Authorities = append(chain.Authorities, cert)
			continue
		}

		chain.Client = cert
		clients++
	}

	switch clients {
	case 0:
		return nil, ErrNoClientCertificatesFound
	case 1:
		return chain, nil
	default:
		return nil, ErrMultipleClientCertificates
	}
}

// CheckKeyPair verifies that keyPEM holds the private key of the client
// certificate in certPEM and that the certificate is valid at now.
func CheckKeyPair(certPEM, keyPEM []byte, now time.Time) (*x509.Certificate, error) {
	chain, err := ParseCertificateChain(certPEM)
	if err != nil {
		return nil, err
	}

	key, err := ParsePrivateKey(keyPEM)
	if err != nil {
		return nil, err
	}

	cert := chain.Client

	pub, ok := key.Public().(interface{ Equal(x crypto.PublicKey) bool })
	if !ok || !pub.Equal(cert.PublicKey) {
		return nil, ErrKeyPairMismatch
	}

	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return nil, errs.Wrapf(ErrCertificateExpired, "valid from %s until %s",
			cert.NotBefore.Format(time.RFC3339), cert.NotAfter.Format(time.RFC3339))
	}

	return cert, nil
}

// Fingerprint is the hex SHA-256 of the DER encoding of cert.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(sum[:])
}
