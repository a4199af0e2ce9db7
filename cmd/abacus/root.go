package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/abacus/internal/cli"
	"github.com/aretw0/abacus/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "abacus",
	Short: "Abacus is a scientific calculator engine",
	Long: `Abacus evaluates infix expressions and drives a keypad calculator session,
from the terminal, a binary keypad stream, an HTTP API or an MCP client.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default: ./abacus.yaml if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().String("format", "", "Display format: general, fixed, fixed:N or scientific")
	rootCmd.PersistentFlags().String("redis", "", "Redis address for the session store")
	rootCmd.PersistentFlags().String("session-dir", "", "Keep sessions as files in this directory")
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	overrides := []struct {
		flag string
		dst  *string
	}{
		{"log-level", &cfg.LogLevel},
		{"log-format", &cfg.LogFormat},
		{"format", &cfg.Format},
		{"redis", &cfg.Redis.Addr},
		{"session-dir", &cfg.SessionDir},
		{"angle", &cfg.Angle},
		{"addr", &cfg.HTTP.Addr},
		{"transport", &cfg.MCP.Transport},
	}
	for _, o := range overrides {
		if f := flags.Lookup(o.flag); f != nil && f.Changed {
			*o.dst = f.Value.String()
		}
	}
	if f := flags.Lookup("port"); f != nil && f.Changed {
		cfg.MCP.Port, _ = flags.GetInt("port")
	}
	return cfg, cfg.Validate()
}

// loadApp builds the shared services for a command. The caller closes the app.
func loadApp(ctx context.Context, cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(ctx, cfg, logger)
}
