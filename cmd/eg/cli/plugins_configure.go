package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amerryma/express-gateway/internal/plugin"
	"github.com/amerryma/express-gateway/internal/ui"
)

var configureOptions []string

var pluginsConfigureCmd = &cobra.Command{
	Use:   "configure <plugin>",
	Short: "Change the options of an enabled plugin",
	Long: `Change the options of a plugin enabled in the system config.

Without --option every option declared by the plugin's manifest is prompted
for, seeded with its current value. With --option only the given options are
set; values are checked against the declared option types.

Examples:
  eg plugins configure example
  eg plugins configure example -p timeout=30 -p verbose=true`,
	Args: cobra.ExactArgs(1),
	RunE: runPluginsConfigure,
}

func init() {
	pluginsConfigureCmd.Flags().StringArrayVarP(&configureOptions, "option", "p", nil, "set an option as key=value (repeatable)")
	pluginsCmd.AddCommand(pluginsConfigureCmd)
}

func runPluginsConfigure(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}

	c := &plugin.Configurer{
		ProjectDir:   paths.ProjectDir,
		SystemConfig: paths.SystemConfig,
		Writer:       configWriter(cmd),
	}
	if len(configureOptions) == 0 {
		c.Prompter = newPrompter(cmd)
	}

	opts, err := c.Configure(args[0], configureOptions)
	if err != nil {
		return fmt.Errorf("configuring %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	for _, o := range opts {
		fmt.Fprintf(out, "  %s = %v\n", o.Name, o.Value)
	}
	ui.Success(out, "Plugin configured!")
	return nil
}
