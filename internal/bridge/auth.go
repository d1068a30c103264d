package bridge

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/log"
)

const APIKeyHeader = "x-api-key"

// SecretStore reads opaque string blobs.
type SecretStore interface {
	GetSecret(ctx context.Context, secretID string) (string, error)
}

// apiKeyTransport injects the shared secret into every request.
type apiKeyTransport struct {
	base     http.RoundTripper
	secrets  SecretStore
	secretID string
	cache    *APIKeyCache
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	key, err := t.apiKey(req.Context())
	if err != nil {
		closeBody(req)
		return nil, err
	}

	out := req.Clone(req.Context())
	out.Header.Set(APIKeyHeader, key)

	return t.base.RoundTrip(out)
}

func (t *apiKeyTransport) apiKey(ctx context.Context) (string, error) {
	key, ok := t.cache.Get()
	if ok {
		return key, nil
	}

	key, err := t.secrets.GetSecret(ctx, t.secretID)
	if err != nil {
		return "", errs.Wrap(ErrFetchSecret, err)
	}

	t.cache.Set(key)

	return key, nil
}

// signingTransport signs every request with SigV4 using credentials exchanged
// from a client certificate. Signatures are computed per request; only the
// credential bundle is cached.
type signingTransport struct {
	base      http.RoundTripper
	signer    *v4.Signer
	secrets   SecretStore
	cert      CertificateRefs
	exchanger CredentialExchanger
	cache     *CredentialCache
	region    string
	service   string
	now       func() time.Time

	// refresh serializes exchanges so concurrent requests trigger one helper run.
	refresh sync.Mutex
}

func (t *signingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	creds, err := t.credentials(ctx)
	if err != nil {
		closeBody(req)
		return nil, err
	}

	body, err := readBody(req)
	if err != nil {
		return nil, errs.Wrap(ErrSignRequest, err)
	}

	sum := sha256.Sum256(body)

	out := req.Clone(ctx)
	out.Body = http.NoBody
	out.ContentLength = int64(len(body))

	if len(body) > 0 {
		out.Body = io.NopCloser(bytes.NewReader(body))
	}

	err = t.signer.SignHTTP(ctx, aws.Credentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
		Source:          "govlink-certificate",
		CanExpire:       true,
		Expires:         creds.Expiration,
	}, out, hex.EncodeToString(sum[:]), t.service, t.region, t.now())
	if err != nil {
		return nil, errs.Wrap(ErrSignRequest, err)
	}

	return t.base.RoundTrip(out)
}

func (t *signingTransport) credentials(ctx context.Context) (Credentials, error) {
	creds, ok := t.cache.Get(t.now())
	if ok {
		return creds, nil
	}

	t.refresh.Lock()
	defer t.refresh.Unlock()

	creds, ok = t.cache.Get(t.now())
	if ok {
		return creds, nil
	}

	log.Debug(ctx, "Exchanging bridge certificate for signed credentials")

	raw, err := t.secrets.GetSecret(ctx, t.cert.SecretID)
	if err != nil {
		return Credentials{}, errs.Wrap(ErrFetchSecret, err)
	}

	bundle, err := parseCertificateBundle(raw)
	if err != nil {
		return Credentials{}, err
	}

	creds, err = t.exchange(ctx, bundle)
	if err != nil {
		return Credentials{}, errs.Wrap(ErrCredentialExchange, err)
	}

	t.cache.Set(creds)

	return creds, nil
}

// exchange writes the bundle to disk only for the duration of the helper call.
func (t *signingTransport) exchange(ctx context.Context, bundle certificateBundle) (Credentials, error) {
	certPath, keyPath, cleanup, err := writeBundle(bundle)
	defer cleanup()

	if err != nil {
		return Credentials{}, err
	}

	return t.exchanger.Exchange(ctx, ExchangeInput{
		CertificatePath: certPath,
		PrivateKeyPath:  keyPath,
		TrustAnchorARN:  t.cert.TrustAnchorARN,
		ProfileARN:      t.cert.ProfileARN,
		RoleARN:         t.cert.RoleARN,
	})
}

// readBody returns the payload to hash and closes the original body.
func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return []byte{}, nil
	}
	defer closeBody(req)

	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		return io.ReadAll(rc)
	}

	return io.ReadAll(req.Body)
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
