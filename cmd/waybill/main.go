// Package main provides the waybill admin CLI.
// See docs/ARCHITECTURE.md § CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/waybill/internal/settings"
	"github.com/mesh-intelligence/waybill/internal/sqlite"
	"github.com/mesh-intelligence/waybill/pkg/types"
)

var (
	// configFile is set by the --config flag.
	configFile string

	// dataDirFlag overrides the configured data directory.
	dataDirFlag string

	// jsonOutput switches command output to JSON.
	jsonOutput bool

	// backend and store are initialized on startup and shared by all
	// subcommands.
	backend *sqlite.Backend
	store   *settings.Store
	logger  *zap.Logger
)

// cliActor is the actor token presented to the capability gate. The CLI
// runs with an allow-all checker; the operating-system user is the
// trust boundary.
const cliActor = "local-admin"

func main() {
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		emitFailure(err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "waybill",
	Short: "Waybill manages delivery tracking records and settings",
	Long: `Waybill is the admin surface of the delivery-tracking integration.
It manages the persisted settings tree and the deliveries table backed
by SQLite.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initBackend,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return closeBackend() },
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: .waybill.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default: .waybill)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(deliveryCmd)
	rootCmd.AddCommand(orderCreatedCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("waybill v0.1.0")
	},
}

// initBackend loads config, attaches the SQLite backend, and builds the
// settings store.
func initBackend(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	cfg, err := loadConfig(configFile, dataDirFlag)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	backend = sqlite.NewBackend(types.AllowAll{})
	if err := backend.Attach(cfg); err != nil {
		return fmt.Errorf("attach backend: %w", err)
	}

	options, err := backend.Options()
	if err != nil {
		return fmt.Errorf("open option store: %w", err)
	}
	store = settings.NewStore(options)

	return nil
}

// closeBackend detaches the backend and flushes the logger.
func closeBackend() error {
	if logger != nil {
		_ = logger.Sync()
	}
	if backend != nil {
		return backend.Detach()
	}
	return nil
}
