// Command storefront serves the Lumière Spirituelle shop pages and exports
// them as static HTML.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lumierespirituelle.fr/storefront/internal/config"
	"lumierespirituelle.fr/storefront/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Lumière Spirituelle storefront",
		Long: `Storefront renders the home, catalogue and product pages from a JSON
product catalog and drives the product preview modal over htmx events.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with local overrides")

	cmd.AddCommand(newServeCmd(opts), newExportCmd(opts))
	return cmd
}

// load reads configuration and builds the process logger.
func (o *rootOptions) load() (config.Config, *zap.Logger, error) {
	loadOpts := []config.Option{config.WithEnvFile(o.envFile)}
	if o.configFile != "" {
		loadOpts = append(loadOpts, config.WithFile(o.configFile))
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
