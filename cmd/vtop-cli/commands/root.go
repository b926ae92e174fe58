package commands

import (
	"context"
	"fmt"
	"os"
	"vtopassist-backend/internal/cache"
	"vtopassist-backend/internal/components/configutil"
	"vtopassist-backend/internal/components/telemetry"
	"vtopassist-backend/internal/db"
	"vtopassist-backend/internal/scrapers/vtop"
	"vtopassist-backend/internal/service"
	"vtopassist-backend/internal/sessionstore"
	"vtopassist-backend/internal/snapshot"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	dumpDir    *string
)

// env is what every portal command works with, built by setupEnv.
type env struct {
	config  Config
	service *service.Service
	close   func()
}

var rootCmd = &cobra.Command{
	Use:   "vtop-cli",
	Short: "vtop-cli logs into the student portal and reads academic records from it.",
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "vtop.json5", "The configuration file to read.")
	dumpDir = rootCmd.PersistentFlags().String("dump", "", "Write every exchange with the portal into this directory.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupEnv(ctx context.Context) (env, error) {
	cfg, err := configutil.ReadRecursively[Config](*configPath)
	if err != nil {
		return env{}, fmt.Errorf("read %s: %w", *configPath, err)
	}
	cfg = cfg.withDefaults()
	if *dumpDir != "" {
		cfg.DumpDir = *dumpDir
	}
	if err := cfg.validate(); err != nil {
		return env{}, fmt.Errorf("invalid %s: %w", *configPath, err)
	}

	telemetry.InitSlog(cfg.Verbose)
	otel, err := telemetry.SetupFromEnv(ctx, "vtop-cli")
	if err == nil {
		telemetry.InstrumentPerfStats(ctx)
	}
	tel := telemetry.SlogAPI{}

	client, err := vtop.NewClient(vtop.Options{
		BaseURL:          cfg.BaseURL,
		Endpoints:        cfg.Endpoints,
		Timeout:          cfg.timeout(),
		RateLimit:        cfg.RateLimit,
		CloudflareBypass: cfg.CloudflareBypass,
		SessionTTL:       cfg.sessionTTL(),
		DumpDir:          cfg.DumpDir,
		Telemetry:        tel,
	})
	if err != nil {
		return env{}, err
	}

	sessions, err := sessionstore.New(sessionstore.Options{
		Secrets:   cfg.SessionSecrets,
		TTL:       cfg.sessionTTL(),
		Telemetry: tel,
	})
	if err != nil {
		return env{}, err
	}

	closers := []func(){func() { otel.Shutdown(context.Background()) }}
	options := []service.ServiceOption{
		service.WithCustomTelemetryAPI(tel),
	}
	if cfg.CacheSize > 0 {
		options = append(options, service.WithCacheSize(cfg.CacheSize))
	}
	if cfg.SnapshotDB != "" {
		sqlite, err := db.OpenSQLite(ctx, cfg.SnapshotDB)
		if err != nil {
			return env{}, err
		}
		closers = append(closers, func() { sqlite.Close() })
		options = append(options, service.WithSnapshots(snapshot.NewSnapshot(sqlite, nil, tel)))
	}

	return env{
		config:  cfg,
		service: service.NewService(client, sessions, cache.NewRegistry(), options...),
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}

// withEnv adapts a command body that needs the portal environment.
func withEnv(run func(cmd *cobra.Command, args []string, e env) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := setupEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()
		return run(cmd, args, e)
	}
}
