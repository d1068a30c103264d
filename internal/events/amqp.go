package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Azure/go-amqp"
	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/errs"
)

var (
	ErrAMQPConnect = errors.New("failed to connect to AMQP broker")
	ErrAMQPSend    = errors.New("failed to send AMQP message")
)

const contentTypeJSON = "application/json"

// sender is the part of *amqp.Sender used to publish.
type sender interface {
	Send(ctx context.Context, msg *amqp.Message, opts *amqp.SendOptions) error
	Close(ctx context.Context) error
}

// AMQPEmitter publishes events to a single AMQP 1.0 target.
type AMQPEmitter struct {
	mu     sync.Mutex
	sender sender
	closer func() error
	source string
}

func NewAMQPEmitter(ctx context.Context, cfg *config.AMQP, source string) (*AMQPEmitter, error) {
	opts, err := connOptions(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.Dial(ctx, cfg.URL, opts)
	if err != nil {
		return nil, errs.Wrap(ErrAMQPConnect, err)
	}

	session, err := conn.NewSession(ctx, nil)
	if err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(ErrAMQPConnect, err)
	}

	s, err := session.NewSender(ctx, cfg.Target, nil)
	if err != nil {
		_ = conn.Close()
		return nil, errs.Wrap(ErrAMQPConnect, err)
	}

	return &AMQPEmitter{
		sender: s,
		closer: conn.Close,
		source: source,
	}, nil
}

func connOptions(cfg *config.AMQP) (*amqp.ConnOptions, error) {
	opts := &amqp.ConnOptions{}

	if cfg.SecretRef.Type != commoncfg.MTLSSecretType {
		return opts, nil
	}

	tlsConfig, err := commoncfg.LoadMTLSConfig(&cfg.SecretRef.MTLS)
	if err != nil {
		return nil, errs.Wrap(config.ErrLoadMTLSConfig, err)
	}

	opts.TLSConfig = tlsConfig
	opts.SASLType = amqp.SASLTypeExternal("")

	return opts, nil
}

func (a *AMQPEmitter) Emit(ctx context.Context, e Event) error {
	body, err := e.encode()
	if err != nil {
		return err
	}

	msg := amqp.NewMessage(body)
	contentType := contentTypeJSON
	subject := e.Type
	msg.Properties = &amqp.MessageProperties{
		ContentType: &contentType,
		Subject:     &subject,
	}
	msg.ApplicationProperties = map[string]any{
		"source": a.source,
		"time":   e.Time.UTC().Format(time.RFC3339),
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	err = a.sender.Send(ctx, msg, nil)
	if err != nil {
		return errs.Wrap(ErrAMQPSend, err)
	}

	return nil
}

func (a *AMQPEmitter) Close(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	err := a.sender.Close(ctx)

	if a.closer != nil {
		err = errors.Join(err, a.closer())
	}

	return err
}
