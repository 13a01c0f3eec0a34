/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/allbin/go-lever/internal/config"
	"github.com/allbin/go-lever/internal/logging"
)

var (
	configPath string
	v          = viper.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "leverctl",
	Short: "Drive and inspect force-feedback levers on serial ports",
	Long: `leverctl talks to force-feedback levers attached over serial ports.

It can list and reset the ports levers are attached to, command a force on a
single lever, watch every configured lever in a live dashboard, and record
sessions for later replay.

Levers are configured in leverctl.yaml (see 'leverctl config init'), with
LEVER_* environment variables overriding the file. --simulate replaces the
hardware with simulated levers on pseudo-terminals.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./leverctl.yaml or ~/.config/leverctl/leverctl.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("simulate", false, "use simulated levers instead of serial hardware")

	v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("simulate", rootCmd.PersistentFlags().Lookup("simulate"))
}

// setup loads the configuration and builds the logger. Log records go to
// logOut unless a log file is configured. The returned func releases the
// log file.
func setup(logOut io.Writer) (*config.Config, *slog.Logger, func()) {
	cfg, err := config.Load(v, configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logging.New(cfg.Log, logOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	log.Debug("configuration loaded",
		slog.String("file", v.ConfigFileUsed()),
		slog.Int("levers", len(cfg.Levers)),
		slog.Bool("simulate", cfg.Simulate))

	return cfg, log, func() { closer.Close() }
}
