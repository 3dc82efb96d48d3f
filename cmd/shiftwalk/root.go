package main

import (
	"github.com/spf13/cobra"
)

// rootFlags carries the persistent flag values shared by every subcommand.
type rootFlags struct {
	config string
	server string
	site   int
	apiKey string
	badge  string
	debug  bool
	json   bool
}

func newRootCommand() *cobra.Command {
	var flags rootFlags
	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:           "shiftwalk",
		Short:         "Demonstration client for the Dispatch manufacturing API",
		Long:          "shiftwalk walks a scripted operator shift against a remote Dispatch server:\ndiscovery, clock in, production entries, a dispatch lifecycle, and clock out.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVar(&flags.server, "server", "", "Dispatch server base URL (overrides server.host)")
	pf.IntVar(&flags.site, "site", 0, "Site number (overrides server.site)")
	pf.StringVar(&flags.apiKey, "api-key", "", "API key (overrides server.api_key and DISPATCH_API_KEY)")
	pf.StringVar(&flags.badge, "badge", "", "Operator badge (overrides operator.badge)")
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&flags.json, "json", false, "Emit JSON instead of tables where supported")

	rootCmd.AddCommand(newRunCommand(ctx))
	for _, cmd := range newDiscoveryCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newReportCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// shouldSkipConfig walks the command chain for the skipConfigLoad annotation,
// set by commands that must work before any configuration exists.
func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// Execute runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}
