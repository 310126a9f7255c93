package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amerryma/express-gateway/internal/log"
	"github.com/amerryma/express-gateway/internal/npm"
	"github.com/amerryma/express-gateway/internal/plugin"
	"github.com/amerryma/express-gateway/internal/ui"
)

var pluginsInstallCmd = &cobra.Command{
	Use:   "install <package>",
	Short: "Install a plugin from npm",
	Long: `Install a plugin package with npm, ask for the options declared in its
manifest, enable it in the system config and add its policies to the gateway
config.

The package may carry a version or tag, as accepted by npm install.

Examples:
  eg plugins install express-gateway-plugin-example
  eg plugins install express-gateway-plugin-example@1.2.0
  eg plugins install express-gateway-plugin-example --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runPluginsInstall,
}

func init() {
	pluginsCmd.AddCommand(pluginsInstallCmd)
}

func runPluginsInstall(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}

	installer := &plugin.Installer{
		Fetcher: &npm.Fetcher{
			Bin:    paths.NPM,
			Dir:    paths.ProjectDir,
			Stderr: cmd.ErrOrStderr(),
		},
		Prompter:      newPrompter(cmd),
		SystemConfig:  paths.SystemConfig,
		GatewayConfig: paths.GatewayConfig,
		Writer:        configWriter(cmd),
	}

	res, err := installer.Install(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("installing %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	if len(res.PoliciesAdded) > 0 {
		fmt.Fprintf(out, "Policies added: %s\n", strings.Join(res.PoliciesAdded, ", "))
	}
	if dryRun {
		fmt.Fprintln(out, ui.Dim("Dry run: no files were written."))
	} else {
		for _, path := range res.Changed {
			fmt.Fprintf(out, "Updated %s\n", ui.ShortenPath(path))
		}
	}
	log.Info("plugin installed", "name", res.Name, "package", res.Package.Name, "changed", res.Changed)
	ui.Success(out, "Plugin installed!")
	return nil
}
