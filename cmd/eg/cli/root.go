// Package cli implements the eg command-line interface using Cobra.
package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/amerryma/express-gateway/internal/config"
	"github.com/amerryma/express-gateway/internal/log"
	"github.com/amerryma/express-gateway/internal/ui"
)

var (
	verbose bool
	dryRun  bool
	jsonOut bool

	// settings is rebuilt for every invocation in PersistentPreRunE.
	settings *viper.Viper
)

var rootCmd = &cobra.Command{
	Use:   "eg",
	Short: "eg - Express Gateway command-line tool",
	Long: `eg manages an Express Gateway project.

Plugins are installed from npm into the project directory, enabled in
system.config and their policies added to gateway.config.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		globalCfg, _ := config.LoadGlobal()

		if err := log.Init(log.Options{
			Verbose:       verbose,
			JSONFormat:    jsonOut,
			DebugDir:      filepath.Join(config.GlobalConfigDir(), "debug"),
			RetentionDays: globalCfg.Debug.RetentionDays,
		}); err != nil {
			// Debug logging is optional; stderr logging still works.
			ui.Warnf("failed to initialize debug logging: %v", err)
		}
		log.SetCommand(cmd.CommandPath())

		settings = config.New(globalCfg)
		return config.BindFlags(settings, cmd.Flags())
	},
}

// Execute runs the root command. Interrupts cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer log.Close()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		ui.Errorf("%v", err)
		log.Debug("command failed", "error", err)
	}
	return err
}

// resolvePaths locates the project and its config files.
func resolvePaths() (*config.Paths, error) {
	if settings == nil {
		settings = config.New(nil)
	}
	return config.Resolve(settings)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.BoolVar(&dryRun, "dry-run", false, "print a diff of config changes instead of writing them")
	pf.BoolVar(&jsonOut, "json", false, "output in JSON format")
	pf.String(config.KeyDir, "", "project directory (env: EG_DIR, default: current directory)")
	pf.String(config.KeyConfigDir, "", "config directory (env: EG_CONFIG_DIR, default: <dir>/config)")
	pf.String(config.KeySystemConfig, "", "system config file (env: EG_SYSTEM_CONFIG)")
	pf.String(config.KeyGatewayConfig, "", "gateway config file (env: EG_GATEWAY_CONFIG)")
	pf.String(config.KeyNPM, "", "npm executable (env: EG_NPM)")
}
