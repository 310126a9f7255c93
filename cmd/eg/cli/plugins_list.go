package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amerryma/express-gateway/internal/document"
	"github.com/amerryma/express-gateway/internal/plugin"
)

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enabled plugins",
	Long: `List the plugins enabled in the system config.

Examples:
  eg plugins list          # Table of plugins
  eg plugins list --json   # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runPluginsList,
}

func init() {
	pluginsCmd.AddCommand(pluginsListCmd)
}

func runPluginsList(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	doc, err := document.Load(paths.SystemConfig)
	if err != nil {
		return err
	}
	entries := plugin.List(doc)

	if jsonOut {
		return writePluginsJSON(cmd.OutOrStdout(), entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No plugins enabled.")
		fmt.Fprintln(cmd.OutOrStdout(), "\nInstall one with: eg plugins install <package>")
		return nil
	}
	return writePluginsTable(cmd.OutOrStdout(), entries)
}

func writePluginsTable(w io.Writer, entries []plugin.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPACKAGE\tOPTIONS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", e.Name, e.Package, len(e.Options))
	}
	return tw.Flush()
}

func writePluginsJSON(w io.Writer, entries []plugin.Entry) error {
	type jsonEntry struct {
		Name    string         `json:"name"`
		Package string         `json:"package"`
		Options map[string]any `json:"options"`
	}
	out := make([]jsonEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, jsonEntry{Name: e.Name, Package: e.Package, Options: e.Options})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
