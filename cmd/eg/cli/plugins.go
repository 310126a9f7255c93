package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/amerryma/express-gateway/internal/plugin"
	"github.com/amerryma/express-gateway/internal/prompt"
	"github.com/amerryma/express-gateway/internal/ui"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Manage gateway plugins",
	Long: `Manage the plugins of an Express Gateway project.

Subcommands:
  install     Install a plugin from npm and enable it
  configure   Change the options of an enabled plugin
  list        List enabled plugins`,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
}

// configWriter persists documents, or prints their diff with --dry-run.
func configWriter(cmd *cobra.Command) plugin.Writer {
	return plugin.Writer{
		DryRun: dryRun,
		Diff:   ui.DiffWriter{W: cmd.OutOrStdout()},
	}
}

// newPrompter asks on the command's input and output streams. Only real
// files can host the interactive prompt; anything else is read line by line.
func newPrompter(cmd *cobra.Command) prompt.Prompter {
	in, inFile := cmd.InOrStdin().(*os.File)
	out, outFile := cmd.OutOrStdout().(*os.File)
	if inFile && outFile {
		return prompt.New(in, out)
	}
	return prompt.NewLine(cmd.InOrStdin(), cmd.OutOrStdout())
}
