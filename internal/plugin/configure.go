package plugin

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/amerryma/express-gateway/internal/document"
	"github.com/amerryma/express-gateway/internal/manifest"
	"github.com/amerryma/express-gateway/internal/prompt"
)

// Configurer changes the options of a plugin already enabled in the system config.
type Configurer struct {
	LoadManifest ManifestLoader
	Prompter     prompt.Prompter
	// ProjectDir holds the node_modules directory plugins are installed in.
	ProjectDir   string
	SystemConfig string
	Writer       Writer
}

// Configure sets options of the plugin called name. With pairs (key=value)
// the values are taken from them; otherwise every option is prompted for.
func (c *Configurer) Configure(name string, pairs []string) ([]OptionValue, error) {
	sys, err := document.Load(c.SystemConfig)
	if err != nil {
		return nil, err
	}
	if _, err := MigrateLegacyPlugins(sys); err != nil {
		return nil, err
	}

	if _, ok := sys.Get(document.Path{pluginsKey, name}); !ok {
		return nil, fmt.Errorf("plugin %q is not enabled in %s: %w", name, sys.Path(), errNotFound)
	}
	previous := PreviousOptions(sys, name)

	pkg := name
	if p, ok := previous[packageKey].(string); ok && p != "" {
		pkg = p
	}

	load := c.LoadManifest
	if load == nil {
		load = manifest.Load
	}
	m, err := load(filepath.Join(c.ProjectDir, "node_modules", filepath.FromSlash(pkg)))
	if err != nil {
		return nil, err
	}

	var opts []OptionValue
	if len(pairs) > 0 {
		opts, err = ParseOptionPairs(m, pairs)
	} else {
		opts, err = PromptOptions(c.Prompter, m, previous)
	}
	if err != nil {
		return nil, err
	}

	if err := SetOptions(sys, name, opts); err != nil {
		return nil, fmt.Errorf("%s: %w", sys.Path(), err)
	}
	if _, err := c.Writer.Persist(sys); err != nil {
		return nil, err
	}
	return opts, nil
}

// Entry is a plugin enabled in the system config.
type Entry struct {
	Name    string
	Package string
	Options map[string]any
}

// List returns the plugins enabled in a system config document, sorted by name.
// Entries of a legacy plugins list are reported as they would be migrated.
func List(doc document.Document) []Entry {
	v, _ := doc.Get(document.Path{pluginsKey})

	var entries []Entry
	switch v := v.(type) {
	case map[string]any:
		for name, raw := range v {
			e := Entry{Name: name, Package: name, Options: map[string]any{}}
			if opts, ok := raw.(map[string]any); ok {
				for k, val := range opts {
					if k == packageKey {
						if p, ok := val.(string); ok && p != "" {
							e.Package = p
						}
						continue
					}
					e.Options[k] = val
				}
			}
			entries = append(entries, e)
		}
	case []any:
		for _, item := range v {
			switch item := item.(type) {
			case string:
				entries = append(entries, Entry{Name: item, Package: item, Options: map[string]any{}})
			case map[string]any:
				name, _ := item["name"].(string)
				if name == "" {
					continue
				}
				e := Entry{Name: name, Package: name, Options: map[string]any{}}
				for k, val := range item {
					if k != "name" {
						e.Options[k] = val
					}
				}
				entries = append(entries, e)
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
