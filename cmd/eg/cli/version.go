package cli

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X .../cli.version=..." by release builds.
var (
	version = "dev"
	commit  = ""
	date    = ""
)

type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Built     string `json:"built,omitempty"`
	GoVersion string `json:"go,omitempty"`
}

// currentBuild reports the ldflags values, filling gaps from the VCS stamp
// that go build records in the binary.
func currentBuild() buildInfo {
	b := buildInfo{Version: version, Commit: commit, Built: date}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	b.GoVersion = info.GoVersion
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.Built == "" {
				b.Built = s.Value
			}
		}
	}
	return b
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of eg",
	Long: `Print the eg release along with the commit and Go toolchain it was built
from. Include this output when reporting a problem with plugin installs.`,
	Example: `  eg version
  eg version --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b := currentBuild()
		out := cmd.OutOrStdout()
		if jsonOut {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(b)
		}
		fmt.Fprintf(out, "eg %s\n", b.Version)
		if b.Commit != "" {
			fmt.Fprintf(out, "  commit: %s\n", b.Commit)
		}
		if b.Built != "" {
			fmt.Fprintf(out, "  built:  %s\n", b.Built)
		}
		if b.GoVersion != "" {
			fmt.Fprintf(out, "  go:     %s\n", b.GoVersion)
		}
		return nil
	},
}
