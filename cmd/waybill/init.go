// Init command: create the data directory, apply the schema, install
// default settings, and write a starter config file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// configFileContents is the structure written to .waybill.yaml.
type configFileContents struct {
	Backend string `yaml:"backend"`
	DataDir string `yaml:"data_dir,omitempty"`
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize waybill storage",
	Long: `Create the data directory, apply the database schema, persist the
default settings tree, and write a starter config file if none exists.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	// Schema is applied by Attach in PersistentPreRunE; what remains is
	// the default settings install and the starter config.
	if err := store.Install(); err != nil {
		logger.Error("install default settings", zap.Error(err))
		return err
	}

	if err := writeConfigIfMissing(".waybill.yaml"); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	emitSuccess("Waybill initialized successfully")
	return nil
}

// writeConfigIfMissing creates a starter config file with the current
// data directory. If the file already exists it is left untouched.
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	cfg := configFileContents{
		Backend: backend.Config().Backend,
		DataDir: backend.Config().DataDir,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
