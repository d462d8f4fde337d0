// Command dbcheck probes the configured database and can create the leads table
// ahead of the first deployment.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"leadtracker/internal/config"
	"leadtracker/internal/database"
	"leadtracker/internal/logging"
	"leadtracker/internal/models"
	"leadtracker/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var errUnreachable = errors.New("database is unreachable")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type checker struct {
	provider *database.Provider
	health   *database.HealthChecker
	logger   *zerolog.Logger
	closer   io.Closer
}

func (c *checker) Close() {
	_ = c.provider.Close()
	if c.closer != nil {
		_ = c.closer.Close()
	}
}

func newChecker(configPath string) (*checker, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.Component(baseLogger, "dbcheck")

	dialect, err := database.NewDialect(cfg.Database.Engine)
	if err != nil {
		return nil, err
	}
	provider, err := database.NewProvider(cfg.Database, dialect, logger)
	if err != nil {
		return nil, err
	}

	return &checker{
		provider: provider,
		health:   database.NewHealthChecker(provider, logger),
		logger:   logger,
		closer:   closer,
	}, nil
}

// newRootCmd builds the dbcheck command tree.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "dbcheck",
		Short:        "Check the LeadTracker database",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", envOr("CONFIG_PATH", "configs/config.yaml"), "path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Report whether the database is reachable and its version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newChecker(configPath)
			if err != nil {
				return err
			}
			defer c.Close()

			status := c.health.CheckHealth(cmd.Context())
			report := map[string]any{"engine": status.Engine, "reachable": status.Reachable}
			if status.Reachable {
				report["version"] = status.Version
			}
			if err := writeReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !status.Reachable {
				return errUnreachable
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the leads table when it is missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newChecker(configPath)
			if err != nil {
				return err
			}
			defer c.Close()

			created, err := database.NewSchema(c.provider, c.health, c.logger).EnsureSchema(cmd.Context())
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), map[string]any{"table_created": created})
		},
	})

	root.AddCommand(newSeedCmd(&configPath))

	return root
}

type seedFile struct {
	Leads []models.LeadInput `yaml:"leads"`
}

// newSeedCmd loads leads from a YAML file, skipping emails that are already registered.
func newSeedCmd(configPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import leads from a YAML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read leads: %w", err)
			}
			var seed seedFile
			if err := yaml.Unmarshal(data, &seed); err != nil {
				return fmt.Errorf("parse leads: %w", err)
			}
			if len(seed.Leads) == 0 {
				return fmt.Errorf("no leads in %s", file)
			}

			c, err := newChecker(*configPath)
			if err != nil {
				return err
			}
			defer c.Close()

			if _, err := database.NewSchema(c.provider, c.health, c.logger).EnsureSchema(cmd.Context()); err != nil {
				return err
			}

			repo := database.NewLeadRepository(c.provider, c.logger)
			created, skipped := 0, 0
			for _, in := range seed.Leads {
				in = in.Trimmed()
				if err := service.Validate(in); err != nil {
					return fmt.Errorf("lead %q: %w", in.Email, err)
				}
				_, err := repo.Create(cmd.Context(), in)
				if errors.Is(err, database.ErrDuplicateEmail) {
					skipped++
					continue
				}
				if err != nil {
					return fmt.Errorf("create %s: %w", in.Email, err)
				}
				created++
			}

			return writeReport(cmd.OutOrStdout(), map[string]any{"created": created, "skipped": skipped})
		},
	}
	cmd.Flags().StringVar(&file, "file", "configs/leads.yaml", "path to leads YAML")

	return cmd
}

func writeReport(w io.Writer, report map[string]any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
