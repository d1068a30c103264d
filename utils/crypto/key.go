// Package crypto reads the PEM material of the bridge client certificate.
package crypto

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"

	"github.com/govlink/govlink/internal/errs"
)

const (
	PEMArmorCertificate        = "CERTIFICATE"
	PEMArmorPKCS8PrivateKey    = "PRIVATE KEY"
	PEMArmorPKCS1RSAPrivateKey = "RSA PRIVATE KEY"
	PEMArmorECPrivateKey       = "EC PRIVATE KEY"
)

var (
	ErrNoPEMBlock              = errors.New("no PEM block found")
	ErrFailedToParsePrivateKey = errors.New("failed to parse private key")
	ErrPrivateKeyWrongType     = errors.New("private key is neither RSA nor ECDSA")
)

// ParsePrivateKey decodes the first PEM block of data as an RSA or ECDSA key
// in PKCS1, SEC 1 or PKCS8 form. IAM Roles Anywhere accepts no other kind.
func ParsePrivateKey(data []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrNoPEMBlock
	}

	parse, ok := keyParsers[block.Type]
	if !ok {
		return nil, errs.Wrapf(ErrPrivateKeyWrongType, block.Type)
	}

	key, err := parse(block.Bytes)
	if err != nil {
		return nil, errs.Wrap(ErrFailedToParsePrivateKey, err)
	}

	switch k := key.(type) {
	case *rsa.PrivateKey:
		return k, nil
	case *ecdsa.PrivateKey:
		return k, nil
	default:
		return nil, ErrPrivateKeyWrongType
	}
}

var keyParsers = map[string]func([]byte) (any, error){
	PEMArmorPKCS1RSAPrivateKey: func(der []byte) (any, error) { return x509.ParsePKCS1PrivateKey(der) },
	PEMArmorECPrivateKey:       func(der []byte) (any, error) { return x509.ParseECPrivateKey(der) },
	PEMArmorPKCS8PrivateKey:    x509.ParsePKCS8PrivateKey,
}

// EncodePEM wraps der in a single PEM block of the given type.
func EncodePEM(blockType string, der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
}
