// Config loading for the waybill CLI.
package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/waybill/pkg/types"
)

const (
	configName = ".waybill"
	configType = "yaml"

	cfgKeyBackend = "backend"
	cfgKeyDataDir = "data_dir"

	defaultDataDir = ".waybill"
)

// loadConfig reads the CLI configuration with Viper. Resolution order:
// explicit --config file, then .waybill.yaml in the working directory
// or home, then WAYBILL_* environment variables, then defaults. The
// --data-dir flag wins over everything.
func loadConfig(configFile, dataDirOverride string) (types.Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyDataDir, defaultDataDir)
	v.SetEnvPrefix("WAYBILL")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
		// A missing config file is not an error.
	}

	cfg := types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: v.GetString(cfgKeyDataDir),
	}
	if dataDirOverride != "" {
		cfg.DataDir = dataDirOverride
	}
	return cfg, nil
}
