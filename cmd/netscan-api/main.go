package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"netscan/internal/config"
	"netscan/internal/logger"
)

var (
	configPath string
	listenAddr string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "netscan-api",
	Short: "HTTP front for the local network scan script",
	Long:  `netscan-api serves the scan UI, lists the host's network interfaces and runs the scan script on request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		app, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("error initializing application: %w", err)
		}
		return app.run(cmd.Context())
	},
}

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "Print the interfaces a client may select",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		lister, err := newLister(cfg)
		if err != nil {
			return err
		}
		for _, name := range lister.List(cmd.Context()) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "path to the JSON configuration file")
	rootCmd.PersistentFlags().StringVar(&listenAddr, "addr", "", "listen address, overrides service.addr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error; overrides service.log_level")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(interfacesCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if listenAddr != "" {
		cfg.Service.Addr = listenAddr
	}
	if logLevel != "" {
		cfg.Service.LogLevel = logLevel
	}
	logger.SetLevel(cfg.Service.LogLevel)
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
