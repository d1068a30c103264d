package dsn

import (
	"errors"
	"strings"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/errs"
)

var (
	ErrLoadingDatabaseHost     = errors.New("failed to load database host")
	ErrLoadingDatabaseUser     = errors.New("failed to load database user")
	ErrLoadingDatabasePassword = errors.New("failed to load database password")
)

// FromDBConfig resolves the secret references of conf and renders a libpq
// keyword/value connection string. Values with spaces or quotes are quoted.
func FromDBConfig(conf config.Database) (string, error) {
	host, err := commoncfg.LoadValueFromSourceRef(conf.Host)
	if err != nil {
		return "", errs.Wrap(ErrLoadingDatabaseHost, err)
	}

	user, err := commoncfg.LoadValueFromSourceRef(conf.User)
	if err != nil {
		return "", errs.Wrap(ErrLoadingDatabaseUser, err)
	}

	password, err := commoncfg.LoadValueFromSourceRef(conf.Secret)
	if err != nil {
		return "", errs.Wrap(ErrLoadingDatabasePassword, err)
	}

	pairs := [][2]string{
		{"host", string(host)},
		{"user", string(user)},
		{"password", string(password)},
		{"dbname", conf.Name},
		{"port", conf.Port},
	}

	if conf.SSLMode != "" {
		pairs = append(pairs, [2]string{"sslmode", conf.SSLMode})
	}

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p[0]+"="+quote(p[1]))
	}

	return strings.Join(parts, " "), nil
}

func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}

	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)

	return "'" + r.Replace(v) + "'"
}
