package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	exolix "github.com/myshadowbank/exolix-sdk"
	exolixprometheus "github.com/myshadowbank/exolix-sdk/adapters/prometheus"
	"github.com/myshadowbank/exolix-sdk/adapters/yamlconfig"
	"github.com/myshadowbank/exolix-sdk/core"
	sqlstore "github.com/myshadowbank/exolix-sdk/store/sql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const ledgerSection = "ledger"

type rootFlags struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	configPath string
	ledgerDSN  string
	ledgerDrv  string
	metrics    bool
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	stdout    io.Writer
	stderr    io.Writer
	transport core.Transport

	flags    rootFlags
	registry *prometheus.Registry
	store    *sqlstore.Store
	facade   *exolix.Facade
}

// newRootCommand builds the CLI. transport overrides the REST adapter when
// set.
func newRootCommand(stdout, stderr io.Writer, transport core.Transport) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, transport: transport}

	root := &cobra.Command{
		Use:           "exolix",
		Short:         "Query rates and manage exchanges on the Exolix API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.apiKey, "api-key", "", "Exolix API key sent in the Authorization header")
	flags.StringVar(&a.flags.baseURL, "base-url", "", "API base URL")
	flags.DurationVar(&a.flags.timeout, "timeout", 0, "per-request timeout, 0 keeps the configured default")
	flags.StringVar(&a.flags.configPath, "config", "", "YAML file with exolix and ledger sections")
	flags.StringVar(&a.flags.ledgerDSN, "ledger-dsn", "", "record transactions in this database")
	flags.StringVar(&a.flags.ledgerDrv, "ledger-driver", sqlstore.DriverSQLite, "ledger driver: sqlite3 or postgres")
	flags.BoolVar(&a.flags.metrics, "metrics", false, "print request metrics to stderr when done")

	root.AddCommand(
		newCurrenciesCommand(a),
		newNetworksCommand(a),
		newRateCommand(a),
		newCreateCommand(a),
		newTransactionCommand(a),
		newTransactionsCommand(a),
		newRefreshCommand(a),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := []exolix.Option{}
	if a.transport != nil {
		opts = append(opts, exolix.WithTransport(a.transport))
	}
	ledger := sqlstore.Config{Driver: a.flags.ledgerDrv, DSN: a.flags.ledgerDSN}
	if path := strings.TrimSpace(a.flags.configPath); path != "" {
		opts = append(opts, exolix.WithConfigProvider(
			exolix.NewCfgxConfigProvider(yamlconfig.NewFileLoader(path, yamlconfig.DefaultSection)),
		))
		section, err := yamlconfig.NewFileLoader(path, ledgerSection).LoadRaw(ctx)
		if err != nil {
			return err
		}
		ledger = mergeLedgerSection(ledger, section)
	}
	if a.flags.metrics {
		a.registry = prometheus.NewRegistry()
		opts = append(opts, exolix.WithMetricsRecorder(exolixprometheus.NewRecorder(a.registry)))
	}

	client, err := exolix.New(exolix.Config{
		BaseURL: a.flags.baseURL,
		APIKey:  a.flags.apiKey,
		Timeout: a.flags.timeout,
	}, opts...)
	if err != nil {
		return err
	}

	facadeOpts := []exolix.FacadeOption{}
	if strings.TrimSpace(ledger.DSN) != "" {
		store, err := sqlstore.Open(ctx, ledger)
		if err != nil {
			return err
		}
		a.store = store
		facadeOpts = append(facadeOpts, exolix.WithLedger(store.Transactions()))
	}
	facade, err := exolix.NewFacade(client, facadeOpts...)
	if err != nil {
		return err
	}
	a.facade = facade
	return nil
}

func (a *app) close() error {
	if a.registry != nil {
		if err := writeMetrics(a.stderr, a.registry); err != nil {
			return err
		}
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// mergeLedgerSection lets flags win over the file.
func mergeLedgerSection(cfg sqlstore.Config, section map[string]any) sqlstore.Config {
	if cfg.DSN == "" {
		if dsn, ok := section["dsn"].(string); ok {
			cfg.DSN = dsn
		}
	}
	if driver, ok := section["driver"].(string); ok && driver != "" && cfg.Driver == sqlstore.DriverSQLite {
		cfg.Driver = driver
	}
	if skip, ok := section["skip_migrations"].(bool); ok {
		cfg.SkipMigrations = skip
	}
	return cfg
}

func (a *app) printJSON(value any) error {
	encoder := json.NewEncoder(a.stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, label := range metric.GetLabel() {
				labels = append(labels, label.GetName()+"="+label.GetValue())
			}
			switch {
			case metric.GetCounter() != nil:
				fmt.Fprintf(w, "%s{%s} %v\n", family.GetName(), strings.Join(labels, ","), metric.GetCounter().GetValue())
			case metric.GetHistogram() != nil:
				fmt.Fprintf(w, "%s{%s} count=%d sum=%v\n", family.GetName(), strings.Join(labels, ","),
					metric.GetHistogram().GetSampleCount(), metric.GetHistogram().GetSampleSum())
			}
		}
	}
	return nil
}
