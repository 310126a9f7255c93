// Package config locates the gateway's configuration and holds per-user settings.
//
// Settings are resolved with viper in this order: command-line flags bound
// with BindFlags, EG_* environment variables, ~/.eg/config.yaml, defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/amerryma/express-gateway/internal/log"
)

// Setting keys. Each is also read from EG_<KEY> with dashes as underscores.
const (
	KeyDir           = "dir"
	KeyConfigDir     = "config-dir"
	KeySystemConfig  = "system-config"
	KeyGatewayConfig = "gateway-config"
	KeyNPM           = "npm"
)

// DefaultConfigDir is the config directory relative to the project directory.
const DefaultConfigDir = "config"

var (
	systemConfigNames  = []string{"system.config.yml", "system.config.yaml", "system.config.json"}
	gatewayConfigNames = []string{"gateway.config.yml", "gateway.config.yaml", "gateway.config.json"}
)

// Paths is where the gateway project and its config files live.
type Paths struct {
	// ProjectDir is where plugins are installed (node_modules).
	ProjectDir    string
	ConfigDir     string
	SystemConfig  string
	GatewayConfig string
	// NPM is the npm executable.
	NPM string
}

// New returns a viper instance reading EG_* environment variables on top of
// the global config.
func New(global *GlobalConfig) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("EG")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	npm := "npm"
	if global != nil && global.NPM != "" {
		npm = global.NPM
	}
	v.SetDefault(KeyNPM, npm)
	return v
}

// BindFlags makes flags in fs override the environment for every setting key
// they define.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range []string{KeyDir, KeyConfigDir, KeySystemConfig, KeyGatewayConfig, KeyNPM} {
		f := fs.Lookup(key)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", key, err)
		}
	}
	return nil
}

// Resolve computes the paths from v. Config files are discovered in the
// config directory by trying .yml, .yaml and .json in that order; when none
// exists the .yml name is used so that the error names a sensible file.
func Resolve(v *viper.Viper) (*Paths, error) {
	dir := v.GetString(KeyDir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory: %w", err)
	}

	configDir := v.GetString(KeyConfigDir)
	if configDir == "" {
		configDir = filepath.Join(dir, DefaultConfigDir)
	}
	if configDir, err = filepath.Abs(configDir); err != nil {
		return nil, fmt.Errorf("resolving config directory: %w", err)
	}

	p := &Paths{
		ProjectDir:    dir,
		ConfigDir:     configDir,
		SystemConfig:  v.GetString(KeySystemConfig),
		GatewayConfig: v.GetString(KeyGatewayConfig),
		NPM:           v.GetString(KeyNPM),
	}
	if p.SystemConfig == "" {
		p.SystemConfig = discover(configDir, systemConfigNames)
	}
	if p.GatewayConfig == "" {
		p.GatewayConfig = discover(configDir, gatewayConfigNames)
	}

	log.Debug("resolved config paths",
		"project", p.ProjectDir,
		"system", p.SystemConfig,
		"gateway", p.GatewayConfig,
		"npm", p.NPM)
	return p, nil
}

func discover(dir string, names []string) string {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return filepath.Join(dir, names[0])
}
