package crypto_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoUtils "github.com/govlink/govlink/utils/crypto"
)

var now = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

// newCertificate self-signs a certificate for a fresh RSA key and returns both as PEM.
func newCertificate(t *testing.T, isCA bool) ([]byte, []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "govlink-bridge"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(24 * time.Hour),
		IsCA:                  isCA,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	return cryptoUtils.EncodePEM(cryptoUtils.PEMArmorCertificate, der),
		cryptoUtils.EncodePEM(cryptoUtils.PEMArmorPKCS1RSAPrivateKey, x509.MarshalPKCS1PrivateKey(key))
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

func TestParseCertificateChain(t *testing.T) {
	client, key := newCertificate(t, false)
	ca, _ := newCertificate(t, true)

	t.Run("Should split client certificate and authorities", func(t *testing.T) {
		chain, err := cryptoUtils.ParseCertificateChain(concat(ca, client))
		require.NoError(t, err)
		assert.Equal(t, "govlink-bridge", chain.Client.Subject.CommonName)
		assert.False(t, chain.Client.IsCA)
		assert.Len(t, chain.Authorities, 1)
	})

	t.Run("Should fail without client certificate", func(t *testing.T) {
		_, err := cryptoUtils.ParseCertificateChain(ca)
		assert.ErrorIs(t, err, cryptoUtils.ErrNoClientCertificatesFound)
	})

	t.Run("Should fail on empty input", func(t *testing.T) {
		_, err := cryptoUtils.ParseCertificateChain(nil)
		assert.ErrorIs(t, err, cryptoUtils.ErrNoClientCertificatesFound)
	})

	t.Run("Should fail with two client certificates", func(t *testing.T) {
		other, _ := newCertificate(t, false)

		_, err := cryptoUtils.ParseCertificateChain(concat(client, other))
		assert.ErrorIs(t, err, cryptoUtils.ErrMultipleClientCertificates)
	})

	t.Run("Should fail when a key is mixed into the chain", func(t *testing.T) {
		_, err := cryptoUtils.ParseCertificateChain(concat(client, key))
		assert.ErrorIs(t, err, cryptoUtils.ErrInvalidTypeInCertificateChain)
	})

	t.Run("Should fail on a corrupt certificate", func(t *testing.T) {
		_, err := cryptoUtils.ParseCertificateChain(cryptoUtils.EncodePEM(cryptoUtils.PEMArmorCertificate, []byte("junk")))
		assert.ErrorIs(t, err, cryptoUtils.ErrFailedToParseCertificate)
	})
}

func TestCheckKeyPair(t *testing.T) {
	certPEM, keyPEM := newCertificate(t, false)

	t.Run("Should accept matching pair", func(t *testing.T) {
		cert, err := cryptoUtils.CheckKeyPair(certPEM, keyPEM, now)
		require.NoError(t, err)
		assert.Equal(t, "govlink-bridge", cert.Subject.CommonName)
	})

	t.Run("Should reject key of another certificate", func(t *testing.T) {
		_, otherKey := newCertificate(t, false)

		_, err := cryptoUtils.CheckKeyPair(certPEM, otherKey, now)
		assert.ErrorIs(t, err, cryptoUtils.ErrKeyPairMismatch)
	})

	t.Run("Should reject expired certificate", func(t *testing.T) {
		_, err := cryptoUtils.CheckKeyPair(certPEM, keyPEM, now.Add(48*time.Hour))
		assert.ErrorIs(t, err, cryptoUtils.ErrCertificateExpired)
	})

	t.Run("Should reject certificate not yet valid", func(t *testing.T) {
		_, err := cryptoUtils.CheckKeyPair(certPEM, keyPEM, now.Add(-2*time.Hour))
		assert.ErrorIs(t, err, cryptoUtils.ErrCertificateExpired)
	})
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		cryptoUtils.Fingerprint(&x509.Certificate{}),
	)
}
