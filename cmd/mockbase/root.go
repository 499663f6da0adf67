package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mockbase/internal/blob"
	"mockbase/internal/client"
	"mockbase/internal/config"
	"mockbase/internal/infra/persistence/memory"
	"mockbase/internal/observability"
	"mockbase/internal/seed"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries the state shared by subcommands once configuration is loaded.
type app struct {
	stdout, stderr io.Writer

	configFile string
	envFile    string
	v          *viper.Viper
	cfg        config.Config
	log        *zap.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "mockbase",
		Short:         "In-memory PostgREST-style mock backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: ./mockbase.yaml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading MOCKBASE_* variables")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: console or json")

	root.AddCommand(newVersionCmd(a))
	root.AddCommand(newQueryCmd(a))
	root.AddCommand(newSeedCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file: %w", err)
		}
	}
	v, err := config.NewViper(a.configFile)
	if err != nil {
		return err
	}
	// The CLI answers immediately unless latency is configured explicitly.
	v.SetDefault("latency", time.Duration(0))
	root := cmd.Root().PersistentFlags()
	if err := v.BindPFlag("log.level", root.Lookup("log-level")); err != nil {
		return err
	}
	if err := v.BindPFlag("log.format", root.Lookup("log-format")); err != nil {
		return err
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	log, err := observability.BuildZap(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.v, a.cfg, a.log = v, cfg, log
	return nil
}

// loadSeed resolves the configured seed source.
func (a *app) loadSeed(ctx context.Context) (memory.Snapshot, error) {
	src, err := seed.FromConfig(a.cfg.Seed)
	if err != nil {
		return memory.Snapshot{}, err
	}
	snap, err := src.Load(ctx)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("load seed: %w", err)
	}
	a.log.Debug("seed loaded", zap.String("source", a.cfg.Seed.Source), zap.Int("records", snap.Len()))
	return snap, nil
}

// newClient builds a client over a store seeded from configuration.
func (a *app) newClient(ctx context.Context) (*client.Client, error) {
	snap, err := a.loadSeed(ctx)
	if err != nil {
		return nil, err
	}
	blobs, err := blob.Open(ctx, a.cfg.BlobOptions())
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	return client.New(memory.NewStore(snap),
		client.WithLogger(observability.NewZapLogger(a.log)),
		client.WithLatency(a.cfg.Latency),
		client.WithJitter(a.cfg.Jitter),
		client.WithBlobStore(blobs),
		client.WithPublicURL(a.cfg.Blob.PublicBaseURL),
	), nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintf(a.stdout, "mockbase %s\n", version)
			return err
		},
	}
}
