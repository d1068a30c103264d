package async

import (
	"net"

	"github.com/hibiken/asynq"
	"github.com/openkcm/common-sdk/pkg/commoncfg"

	conf "github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/errs"
)

// redisClientOpt resolves the task queue address and credentials. mTLS adds
// a client certificate; ACL credentials are added in either mode.
func redisClientOpt(cfg conf.Redis) (asynq.RedisClientOpt, error) {
	host, err := commoncfg.LoadValueFromSourceRef(cfg.Host)
	if err != nil {
		return asynq.RedisClientOpt{}, errs.Wrap(ErrLoadingQueueHost, err)
	}

	opts := asynq.RedisClientOpt{Addr: net.JoinHostPort(string(host), cfg.Port)}

	switch cfg.SecretRef.Type {
	case commoncfg.InsecureSecretType:
	case commoncfg.MTLSSecretType:
		tlsConfig, err := commoncfg.LoadMTLSConfig(&cfg.SecretRef.MTLS)
		if err != nil {
			return asynq.RedisClientOpt{}, errs.Wrap(ErrMTLSRedisClientOpt, errs.Wrap(conf.ErrLoadMTLSConfig, err))
		}

		opts.TLSConfig = tlsConfig
	default:
		return asynq.RedisClientOpt{}, ErrSecretTypeQueue
	}

	if !cfg.ACL.Enabled {
		return opts, nil
	}

	username, err := commoncfg.LoadValueFromSourceRef(cfg.ACL.Username)
	if err != nil {
		return asynq.RedisClientOpt{}, errs.Wrap(ErrACLUsername, err)
	}

	password, err := commoncfg.LoadValueFromSourceRef(cfg.ACL.Password)
	if err != nil {
		return asynq.RedisClientOpt{}, errs.Wrap(ErrACLPassword, err)
	}

	opts.Username = string(username)
	opts.Password = string(password)

	return opts, nil
}
