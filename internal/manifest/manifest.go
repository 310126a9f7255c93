// Package manifest loads the declarative manifest shipped with a plugin package.
//
// A plugin package declares its manifest either as its entry point (package.json
// "main" ending in .json, .yaml or .yml) or as a manifest.json, manifest.yaml or
// manifest.yml file next to the entry point or in the package root. The manifest
// names the plugin, the options it accepts and the policies it provides.
package manifest

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/amerryma/express-gateway/internal/log"
)

// Option types a manifest may declare.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// Option is one configuration value a plugin accepts.
type Option struct {
	Name     string
	Type     string
	Title    string
	Required bool
}

// Label is the human readable name of the option.
func (o Option) Label() string {
	if o.Title != "" {
		return o.Title
	}
	return o.Name
}

// Manifest describes an installed plugin.
type Manifest struct {
	// Name is the plugin name declared by the manifest; empty when not declared.
	Name string
	// Package is the package name from package.json.
	Package string
	Version string
	// Options are in declaration order.
	Options []Option
	// Policies are in declaration order.
	Policies []string
	// Path is the manifest file that was loaded.
	Path string
}

// Option returns the declared option called name.
func (m *Manifest) Option(name string) (Option, bool) {
	for _, o := range m.Options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

var manifestNames = []string{"manifest.json", "manifest.yaml", "manifest.yml"}

// Load reads the manifest of the package installed in dir.
func Load(dir string) (*Manifest, error) {
	pkgPath := filepath.Join(dir, "package.json")
	pkgJSON, err := os.ReadFile(pkgPath)
	if err != nil {
		return nil, &LoadError{Dir: dir, Reason: "reading package.json", Err: err}
	}
	if !gjson.ValidBytes(pkgJSON) {
		return nil, &LoadError{Dir: dir, Path: pkgPath, Reason: "package.json is not valid JSON"}
	}

	pkg := gjson.ParseBytes(pkgJSON)
	main := pkg.Get("main").String()
	if main == "" {
		main = "index.js"
	}

	path, err := findManifest(dir, main)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Dir: dir, Path: path, Reason: "reading manifest", Err: err}
	}

	var m *Manifest
	if strings.EqualFold(filepath.Ext(path), ".json") {
		m, err = parseJSON(dir, path, data)
	} else {
		m, err = parseYAML(dir, path, data)
	}
	if err != nil {
		return nil, err
	}

	m.Path = path
	m.Package = pkg.Get("name").String()
	if m.Version == "" {
		m.Version = pkg.Get("version").String()
	}

	log.Debug("loaded plugin manifest", "path", path, "name", m.Name, "package", m.Package,
		"options", len(m.Options), "policies", len(m.Policies))
	return m, nil
}

func findManifest(dir, main string) (string, error) {
	entry := filepath.Join(dir, filepath.FromSlash(main))
	switch strings.ToLower(filepath.Ext(entry)) {
	case ".json", ".yaml", ".yml":
		if _, err := os.Stat(entry); err != nil {
			return "", &LoadError{Dir: dir, Path: entry, Reason: "entry point manifest not found", Err: err}
		}
		return entry, nil
	}

	dirs := []string{filepath.Dir(entry)}
	if root := filepath.Clean(dir); !slices.Contains(dirs, root) {
		dirs = append(dirs, root)
	}
	for _, d := range dirs {
		for _, name := range manifestNames {
			candidate := filepath.Join(d, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", &LoadError{Dir: dir, Reason: "no manifest.json, manifest.yaml or manifest.yml found"}
}

func parseJSON(dir, path string, data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, &LoadError{Dir: dir, Path: path, Reason: "manifest is not valid JSON"}
	}
	if err := validate(dir, path, data); err != nil {
		return nil, err
	}

	doc := gjson.ParseBytes(data)
	m := &Manifest{
		Name:    doc.Get("name").String(),
		Version: doc.Get("version").String(),
	}
	doc.Get("options").ForEach(func(key, value gjson.Result) bool {
		m.Options = append(m.Options, Option{
			Name:     key.String(),
			Type:     value.Get("type").String(),
			Title:    value.Get("title").String(),
			Required: value.Get("required").Bool(),
		})
		return true
	})
	for _, p := range doc.Get("policies").Array() {
		m.Policies = append(m.Policies, p.String())
	}
	return m, nil
}

type yamlOption struct {
	Type     string `yaml:"type"`
	Title    string `yaml:"title"`
	Required bool   `yaml:"required"`
}

func parseYAML(dir, path string, data []byte) (*Manifest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &LoadError{Dir: dir, Path: path, Reason: "manifest is not valid YAML", Err: err}
	}

	var raw any
	if err := root.Decode(&raw); err != nil {
		return nil, &LoadError{Dir: dir, Path: path, Reason: "manifest is not valid YAML", Err: err}
	}
	if err := validate(dir, path, raw); err != nil {
		return nil, err
	}

	var doc struct {
		Name     string    `yaml:"name"`
		Version  string    `yaml:"version"`
		Options  yaml.Node `yaml:"options"`
		Policies []string  `yaml:"policies"`
	}
	if err := root.Decode(&doc); err != nil {
		return nil, &LoadError{Dir: dir, Path: path, Reason: "decoding manifest", Err: err}
	}

	m := &Manifest{Name: doc.Name, Version: doc.Version, Policies: doc.Policies}
	if doc.Options.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(doc.Options.Content); i += 2 {
			var o yamlOption
			if err := doc.Options.Content[i+1].Decode(&o); err != nil {
				return nil, &LoadError{Dir: dir, Path: path, Reason: "decoding option " + doc.Options.Content[i].Value, Err: err}
			}
			m.Options = append(m.Options, Option{
				Name:     doc.Options.Content[i].Value,
				Type:     o.Type,
				Title:    o.Title,
				Required: o.Required,
			})
		}
	}
	return m, nil
}
