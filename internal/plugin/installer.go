package plugin

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/amerryma/express-gateway/internal/document"
	"github.com/amerryma/express-gateway/internal/log"
	"github.com/amerryma/express-gateway/internal/manifest"
	"github.com/amerryma/express-gateway/internal/npm"
	"github.com/amerryma/express-gateway/internal/prompt"
)

// Fetcher installs a package and reports where it went.
type Fetcher interface {
	Install(ctx context.Context, spec string) (*npm.Package, error)
}

// ManifestLoader loads the manifest of the package installed in dir.
type ManifestLoader func(dir string) (*manifest.Manifest, error)

// Writer persists edited config documents.
type Writer struct {
	// DryRun prints a diff of every change to Diff instead of writing files.
	DryRun bool
	Diff   io.Writer
}

// Persist writes doc if it changed. It reports whether there was a change.
func (w *Writer) Persist(doc document.Document) (bool, error) {
	changed, err := document.Changed(doc)
	if err != nil {
		return false, err
	}
	if !changed {
		log.Debug("config unchanged", "path", doc.Path())
		return false, nil
	}

	if w.DryRun {
		diff, err := document.Diff(doc)
		if err != nil {
			return false, err
		}
		out := w.Diff
		if out == nil {
			out = os.Stdout
		}
		fmt.Fprint(out, diff)
		log.Debug("dry run, config not written", "path", doc.Path())
		return true, nil
	}

	if err := document.Write(doc); err != nil {
		return false, err
	}
	log.Info("config updated", "path", doc.Path())
	return true, nil
}

// Installer runs the install workflow: fetch, load manifest, prompt, merge.
type Installer struct {
	Fetcher      Fetcher
	LoadManifest ManifestLoader
	Prompter     prompt.Prompter
	// SystemConfig and GatewayConfig are the config file paths.
	SystemConfig  string
	GatewayConfig string
	Writer        Writer
}

// InstallResult describes a finished install.
type InstallResult struct {
	// Name is the plugin name used as key in the system config.
	Name     string
	Package  *npm.Package
	Manifest *manifest.Manifest
	Answers  *Answers
	// PoliciesAdded lists policies newly whitelisted in the gateway config.
	PoliciesAdded []string
	// Changed lists config files that were written (or diffed in a dry run).
	Changed []string
}

// Install installs spec and records it in the configs as the user decides.
// Nothing is written when fetching, loading the manifest or prompting fails.
func (in *Installer) Install(ctx context.Context, spec string) (*InstallResult, error) {
	pkg, err := in.Fetcher.Install(ctx, spec)
	if err != nil {
		return nil, err
	}

	load := in.LoadManifest
	if load == nil {
		load = manifest.Load
	}
	m, err := load(pkg.Path)
	if err != nil {
		return nil, err
	}

	name := m.Name
	if name == "" {
		name = pkg.Name
	}
	log.Debug("installing plugin", "name", name, "package", pkg.Name, "version", pkg.Version)

	// Both configs must load before any prompt or write.
	sys, err := document.Load(in.SystemConfig)
	if err != nil {
		return nil, err
	}
	gw, err := document.Load(in.GatewayConfig)
	if err != nil {
		return nil, err
	}
	if _, err := MigrateLegacyPlugins(sys); err != nil {
		return nil, fmt.Errorf("%s: %w", sys.Path(), err)
	}

	answers, err := CollectAnswers(in.Prompter, m, PreviousOptions(sys, name))
	if err != nil {
		return nil, err
	}

	res := &InstallResult{Name: name, Package: pkg, Manifest: m, Answers: answers}

	var pending []document.Document
	if answers.EnablePlugin {
		if err := EnablePlugin(sys, name, pkg.Name, answers.Options); err != nil {
			return nil, fmt.Errorf("%s: %w", sys.Path(), err)
		}
		pending = append(pending, sys)
	}
	if answers.AddPolicies {
		res.PoliciesAdded, err = AddPolicies(gw, m.Policies)
		if err != nil {
			return nil, err
		}
		pending = append(pending, gw)
	}

	for _, doc := range pending {
		changed, err := in.Writer.Persist(doc)
		if err != nil {
			return nil, err
		}
		if changed {
			res.Changed = append(res.Changed, doc.Path())
		}
	}

	return res, nil
}
