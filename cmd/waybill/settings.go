// Settings commands: show, get, set, providers.
package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/waybill/pkg/types"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage the persisted settings tree",
}

var settingsStrict bool

func init() {
	settingsGetCmd.Flags().BoolVar(&settingsStrict, "strict", false,
		"fail on a corrupt settings blob instead of falling back to defaults")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsProvidersCmd)
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the full settings tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := store.Read()
		if err != nil {
			return err
		}
		if jsonOutput {
			return emitJSON(tree)
		}
		out, err := yaml.Marshal(tree)
		if err != nil {
			return fmt.Errorf("marshal settings: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <section> <key>",
	Short: "Print one setting value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value any
		if settingsStrict {
			var err error
			value, err = store.Lookup(args[0], args[1])
			if err != nil {
				return err
			}
		} else {
			value = store.Value(args[0], args[1], nil)
		}
		return emitJSON(value)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <section> <key> <value>",
	Short: "Set one setting value",
	Long: `Set writes a single key through the settings store. The value is
parsed as JSON when possible, so numbers and booleans keep their type;
anything else is stored as a string.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value any
		if err := json.Unmarshal([]byte(args[2]), &value); err != nil {
			value = args[2]
		}
		partial := types.Tree{args[0]: {args[1]: value}}
		if err := store.Write(partial); err != nil {
			return err
		}
		emitSuccess(fmt.Sprintf("Set %s.%s", args[0], args[1]))
		return nil
	},
}

var settingsProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List enabled shipping providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		providers := store.Providers()
		if jsonOutput {
			return emitJSON(providers)
		}
		keys := make([]string, 0, len(providers))
		for k := range providers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%s\t%s\n", k, providers[k])
		}
		return nil
	},
}
