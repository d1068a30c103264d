package bridgecli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/govlink/govlink/internal/app"
	"github.com/govlink/govlink/internal/bridge"
	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/db"
	"github.com/govlink/govlink/internal/events"
	"github.com/govlink/govlink/internal/manager"
	"github.com/govlink/govlink/internal/repo/sql"
	"github.com/govlink/govlink/providers/clients/aws"
	"github.com/govlink/govlink/utils/cmd"
	"github.com/govlink/govlink/utils/crypto"
)

type SecretWriter interface {
	PutSecret(ctx context.Context, secretID, value string) error
}

type AccountLister interface {
	ListAccounts(ctx context.Context) ([]bridge.LinkedAccount, error)
}

type OUAccountLister interface {
	ListAccountsInOU(ctx context.Context, parentID string) ([]aws.Account, error)
}

type Inventory interface {
	Unregistered(ctx context.Context, ids []string) ([]string, error)
}

// ImportCertificate checks that certPEM and keyPEM form a currently valid pair
// and stores them as the bundle the bridge signing transport reads.
func ImportCertificate(
	ctx context.Context,
	secrets SecretWriter,
	secretID string,
	certPEM, keyPEM []byte,
	now time.Time,
	out io.Writer,
) error {
	cert, err := crypto.CheckKeyPair(certPEM, keyPEM, now)
	if err != nil {
		return oops.In("bridge").Wrapf(err, "checking certificate")
	}

	bundle, err := bridge.EncodeCertificateBundle(string(certPEM), string(keyPEM))
	if err != nil {
		return oops.In("bridge").Wrapf(err, "encoding certificate bundle")
	}

	err = secrets.PutSecret(ctx, secretID, bundle)
	if err != nil {
		return oops.In("bridge").Wrapf(err, "storing certificate bundle in %s", secretID)
	}

	_, _ = fmt.Fprintf(out, "Stored certificate %q (sha256 %s, expires %s) in %s\n",
		cert.Subject.CommonName,
		crypto.Fingerprint(cert),
		cert.NotAfter.UTC().Format(time.RFC3339),
		secretID,
	)

	return nil
}

const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

type linkedAccountRow struct {
	GovCloudAccountID   string `yaml:"govCloudAccountId"`
	CommercialAccountID string `yaml:"commercialAccountId"`
	AccountName         string `yaml:"accountName,omitempty"`
	Email               string `yaml:"email,omitempty"`
	Status              string `yaml:"status,omitempty"`
}

// ListAccounts prints every linked account known to the bridge as a table or
// as a YAML sequence.
func ListAccounts(ctx context.Context, lister AccountLister, format string, out io.Writer) error {
	accounts, err := lister.ListAccounts(ctx)
	if err != nil {
		return oops.In("bridge").Wrapf(err, "listing linked accounts")
	}

	switch format {
	case FormatYAML:
		rows := make([]linkedAccountRow, 0, len(accounts))
		for _, a := range accounts {
			rows = append(rows, linkedAccountRow(a))
		}

		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)

		err = enc.Encode(rows)
		if err != nil {
			return oops.In("bridge").Wrapf(err, "encoding linked accounts")
		}

		return enc.Close()
	case FormatTable, "":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "GOVCLOUD\tCOMMERCIAL\tNAME\tSTATUS")

		for _, a := range accounts {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.GovCloudAccountID, a.CommercialAccountID, a.AccountName, a.Status)
		}

		return w.Flush()
	default:
		return oops.In("bridge").Errorf("unsupported output format %q", format)
	}
}

type candidateRow struct {
	AccountID string `yaml:"accountId"`
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
}

// ListJoinCandidates prints the active accounts directly under parentID that
// have no inventory record yet, i.e. the accounts a join-existing request can adopt.
func ListJoinCandidates(
	ctx context.Context,
	lister OUAccountLister,
	inventory Inventory,
	parentID, format string,
	out io.Writer,
) error {
	accounts, err := lister.ListAccountsInOU(ctx, parentID)
	if err != nil {
		return oops.In("bridge").Wrapf(err, "listing accounts under %s", parentID)
	}

	byID := make(map[string]aws.Account, len(accounts))
	ids := make([]string, 0, len(accounts))

	for _, a := range accounts {
		if a.Status != aws.AccountStatusActive {
			continue
		}

		byID[a.ID] = a
		ids = append(ids, a.ID)
	}

	ids, err = inventory.Unregistered(ctx, ids)
	if err != nil {
		return oops.In("bridge").Wrapf(err, "checking inventory")
	}

	rows := make([]candidateRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, candidateRow{AccountID: id, Name: byID[id].Name, Email: byID[id].Email})
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)

		err = enc.Encode(rows)
		if err != nil {
			return oops.In("bridge").Wrapf(err, "encoding join candidates")
		}

		return enc.Close()
	case FormatTable, "":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ACCOUNT\tNAME\tEMAIL")

		for _, r := range rows {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.AccountID, r.Name, r.Email)
		}

		return w.Flush()
	default:
		return oops.In("bridge").Errorf("unsupported output format %q", format)
	}
}

func Cmd(buildInfo string) *cobra.Command {
	command := &cobra.Command{
		Use:   "bridge",
		Short: "Cross-partition bridge tools",
	}

	command.AddCommand(importCertificateCmd(buildInfo), listAccountsCmd(buildInfo), joinCandidatesCmd(buildInfo))

	return command
}

func importCertificateCmd(buildInfo string) *cobra.Command {
	var secretID, certPath, keyPath string

	command := &cobra.Command{
		Use:   "import-certificate",
		Short: "Store a client certificate and key for signed bridge calls",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := cmd.Setup(buildInfo)
			if err != nil {
				return err
			}

			if secretID == "" && cfg.Bridge.Certificate != nil {
				secretID = cfg.Bridge.Certificate.SecretID
			}

			if secretID == "" {
				return oops.In("bridge").Errorf("no secret id given and none configured")
			}

			certPEM, err := os.ReadFile(certPath)
			if err != nil {
				return oops.In("bridge").Wrapf(err, "reading certificate")
			}

			keyPEM, err := os.ReadFile(keyPath)
			if err != nil {
				return oops.In("bridge").Wrapf(err, "reading private key")
			}

			awsCfg, err := aws.LoadConfig(c.Context(), cfg.AWS.Region, aws.BaseEndpoint(cfg.AWS.BaseEndpoint))
			if err != nil {
				return oops.In("bridge").Wrapf(err, "loading AWS config")
			}

			return ImportCertificate(c.Context(), aws.NewSecretsClient(awsCfg), secretID,
				certPEM, keyPEM, time.Now(), c.OutOrStdout())
		},
	}

	command.Flags().StringVar(&secretID, "secret-id", "", "secret receiving the bundle (defaults to bridge.certificate.secretId)")
	command.Flags().StringVar(&certPath, "cert", "", "PEM certificate chain with one client certificate")
	command.Flags().StringVar(&keyPath, "key", "", "PEM private key of the client certificate")
	_ = command.MarkFlagRequired("cert")
	_ = command.MarkFlagRequired("key")

	return command
}

func listAccountsCmd(buildInfo string) *cobra.Command {
	var format string

	command := &cobra.Command{
		Use:   "list-accounts",
		Short: "List GovCloud accounts linked to commercial accounts",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := cmd.Setup(buildInfo)
			if err != nil {
				return err
			}

			client, err := newBridgeClient(c.Context(), cfg)
			if err != nil {
				return err
			}

			return ListAccounts(c.Context(), client, format, c.OutOrStdout())
		},
	}

	command.Flags().StringVarP(&format, "output", "o", FormatTable, "output format: table or yaml")

	return command
}

func joinCandidatesCmd(buildInfo string) *cobra.Command {
	var parentID, format string

	command := &cobra.Command{
		Use:   "join-candidates",
		Short: "List active accounts under an OU that are not yet in the inventory",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := cmd.Setup(buildInfo)
			if err != nil {
				return err
			}

			awsCfg, err := aws.LoadConfig(c.Context(), cfg.AWS.Region, aws.BaseEndpoint(cfg.AWS.BaseEndpoint))
			if err != nil {
				return oops.In("bridge").Wrapf(err, "loading AWS config")
			}

			dbCon, err := db.StartDBConnection(c.Context(), cfg.Database, cfg.DatabaseReplicas)
			if err != nil {
				return oops.In("bridge").Wrapf(err, "connecting to inventory database")
			}

			defer func() {
				sqlDB, err := dbCon.DB()
				if err == nil {
					_ = sqlDB.Close()
				}
			}()

			accounts := manager.NewAccountManager(sql.NewRepository(dbCon),
				events.NewLogEmitter(cfg.Events.Source), &cfg.Inventory, &cfg.Events)

			return ListJoinCandidates(c.Context(), app.NewOrganizationsClient(cfg, awsCfg), accounts,
				parentID, format, c.OutOrStdout())
		},
	}

	command.Flags().StringVar(&parentID, "parent", "", "root or organizational unit id to search")
	command.Flags().StringVarP(&format, "output", "o", FormatTable, "output format: table or yaml")
	_ = command.MarkFlagRequired("parent")

	return command
}

func newBridgeClient(ctx context.Context, cfg *config.Config) (*bridge.Client, error) {
	err := cfg.Bridge.Validate()
	if err != nil {
		return nil, oops.In("bridge").Wrapf(err, "bridge is not configured")
	}

	awsCfg, err := aws.LoadConfig(ctx, cfg.AWS.Region, aws.BaseEndpoint(cfg.AWS.BaseEndpoint))
	if err != nil {
		return nil, oops.In("bridge").Wrapf(err, "loading AWS config")
	}

	return app.NewBridgeClient(&cfg.Bridge, aws.NewSecretsClient(awsCfg))
}
