package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/govlink/govlink/internal/errs"
)

const DefaultHelperPath = "aws_signing_helper"

var ErrEmptyCredentials = errors.New("credential helper returned an incomplete bundle")

// ExchangeInput points the credential helper at the certificate material on disk.
type ExchangeInput struct {
	CertificatePath string
	PrivateKeyPath  string
	TrustAnchorARN  string
	ProfileARN      string
	RoleARN         string
}

// CredentialExchanger trades a client certificate for temporary signed credentials.
type CredentialExchanger interface {
	Exchange(ctx context.Context, in ExchangeInput) (Credentials, error)
}

// SigningHelper runs the IAM Roles Anywhere credential helper as a child process.
type SigningHelper struct {
	Path string
	run  func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewSigningHelper(path string) *SigningHelper {
	if path == "" {
		path = DefaultHelperPath
	}

	return &SigningHelper{
		Path: path,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

type helperOutput struct {
	Version         int       `json:"Version"`
	AccessKeyID     string    `json:"AccessKeyId"`
	SecretAccessKey string    `json:"SecretAccessKey"`
	SessionToken    string    `json:"SessionToken"`
	Expiration      time.Time `json:"Expiration"`
}

func (h *SigningHelper) Exchange(ctx context.Context, in ExchangeInput) (Credentials, error) {
	out, err := h.run(ctx, h.Path,
		"credential-process",
		"--certificate", in.CertificatePath,
		"--private-key", in.PrivateKeyPath,
		"--trust-anchor-arn", in.TrustAnchorARN,
		"--profile-arn", in.ProfileARN,
		"--role-arn", in.RoleARN,
	)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return Credentials{}, errs.Wrapf(err, string(exitErr.Stderr))
		}

		return Credentials{}, err
	}

	var res helperOutput

	err = json.Unmarshal(out, &res)
	if err != nil {
		return Credentials{}, errs.Wrap(ErrDecodeResponse, err)
	}

	if res.AccessKeyID == "" || res.SecretAccessKey == "" || res.Expiration.IsZero() {
		return Credentials{}, ErrEmptyCredentials
	}

	return Credentials{
		AccessKeyID:     res.AccessKeyID,
		SecretAccessKey: res.SecretAccessKey,
		SessionToken:    res.SessionToken,
		Expiration:      res.Expiration,
	}, nil
}

// certificateBundle is the secret store payload holding PEM material.
type certificateBundle struct {
	Certificate string `json:"certificate"`
	PrivateKey  string `json:"privateKey"`
}

func parseCertificateBundle(raw string) (certificateBundle, error) {
	var b certificateBundle

	err := json.Unmarshal([]byte(raw), &b)
	if err != nil {
		return certificateBundle{}, errs.Wrap(ErrInvalidCertificateBundle, err)
	}

	if b.Certificate == "" || b.PrivateKey == "" {
		return certificateBundle{}, ErrInvalidCertificateBundle
	}

	return b, nil
}

// EncodeCertificateBundle renders PEM material as the secret store payload
// read back by the signing transport.
func EncodeCertificateBundle(certificatePEM, privateKeyPEM string) (string, error) {
	if certificatePEM == "" || privateKeyPEM == "" {
		return "", ErrInvalidCertificateBundle
	}

	raw, err := json.Marshal(certificateBundle{Certificate: certificatePEM, PrivateKey: privateKeyPEM})
	if err != nil {
		return "", errs.Wrap(ErrInvalidCertificateBundle, err)
	}

	return string(raw), nil
}

// writeBundle stores the bundle in two owner-only temporary files.
// The returned cleanup removes whatever was written and must always be called.
func writeBundle(b certificateBundle) (string, string, func(), error) {
	var paths []string

	cleanup := func() {
		for _, p := range paths {
			_ = os.Remove(p)
		}
	}

	write := func(pattern, content string) (string, error) {
		f, err := os.CreateTemp("", pattern)
		if err != nil {
			return "", err
		}

		paths = append(paths, f.Name())

		err = f.Chmod(0o600)
		if err == nil {
			_, err = f.WriteString(content)
		}

		closeErr := f.Close()
		if err == nil {
			err = closeErr
		}

		return f.Name(), err
	}

	certPath, err := write("govlink-cert-*.pem", b.Certificate)
	if err != nil {
		return "", "", cleanup, err
	}

	keyPath, err := write("govlink-key-*.pem", b.PrivateKey)
	if err != nil {
		return "", "", cleanup, err
	}

	return certPath, keyPath, cleanup, nil
}
