package plugin

import (
	"fmt"
	"sort"

	"github.com/amerryma/express-gateway/internal/document"
	"github.com/amerryma/express-gateway/internal/log"
)

const (
	pluginsKey  = "plugins"
	policiesKey = "policies"
	packageKey  = "package"
)

// EnablePlugin records the plugin in a system config document. The entry is
// created empty when missing, carries a package field only when the plugin
// name differs from the package it was installed from, and receives every
// option value.
func EnablePlugin(doc document.Document, name, pkg string, opts []OptionValue) error {
	if _, err := MigrateLegacyPlugins(doc); err != nil {
		return err
	}

	entry := document.Path{pluginsKey, name}
	if _, ok := doc.Get(entry); !ok {
		if err := doc.Set(entry, nil); err != nil {
			return fmt.Errorf("adding plugin %s: %w", name, err)
		}
	}
	if name != pkg {
		if err := doc.Set(append(entry, packageKey), pkg); err != nil {
			return fmt.Errorf("setting package of plugin %s: %w", name, err)
		}
	}
	return SetOptions(doc, name, opts)
}

// SetOptions stores option values on an existing plugin entry.
func SetOptions(doc document.Document, name string, opts []OptionValue) error {
	for _, o := range opts {
		if err := doc.Set(document.Path{pluginsKey, name, o.Name}, o.Value); err != nil {
			return fmt.Errorf("setting option %s of plugin %s: %w", o.Name, name, err)
		}
	}
	return nil
}

// AddPolicies appends the policies not yet whitelisted in a gateway config
// document, keeping their order. It returns the policies that were added.
func AddPolicies(doc document.Document, policies []string) ([]string, error) {
	var list []any
	switch v, _ := doc.Get(document.Path{policiesKey}); v := v.(type) {
	case nil:
	case []any:
		list = v
	default:
		return nil, fmt.Errorf("%s: policies must be a list, found %T", doc.Path(), v)
	}

	seen := make(map[string]bool, len(list)+len(policies))
	for _, item := range list {
		if s, ok := item.(string); ok {
			seen[s] = true
		}
	}

	var added []string
	for _, p := range policies {
		if seen[p] {
			continue
		}
		seen[p] = true
		added = append(added, p)
		list = append(list, p)
	}
	if len(added) == 0 {
		return nil, nil
	}

	if err := doc.Set(document.Path{policiesKey}, list); err != nil {
		return nil, fmt.Errorf("updating policies: %w", err)
	}
	return added, nil
}

// PreviousOptions returns the current entry of a plugin in a system config
// document, or nil when the plugin has no option values.
func PreviousOptions(doc document.Document, name string) map[string]any {
	v, _ := doc.Get(document.Path{pluginsKey, name})
	m, _ := v.(map[string]any)
	return m
}

// MigrateLegacyPlugins converts a plugins list, as written by older gateway
// releases, into the plugins mapping. List items are either plugin names or
// objects with a name field and option values. It reports whether the
// document was changed.
func MigrateLegacyPlugins(doc document.Document) (bool, error) {
	v, _ := doc.Get(document.Path{pluginsKey})
	list, ok := v.([]any)
	if !ok {
		return false, nil
	}

	type legacyEntry struct {
		name string
		opts map[string]any
	}
	var entries []legacyEntry
	for _, item := range list {
		switch item := item.(type) {
		case string:
			entries = append(entries, legacyEntry{name: item})
		case map[string]any:
			name, _ := item["name"].(string)
			if name == "" {
				log.Warn("dropping legacy plugin entry without a name", "config", doc.Path(), "entry", item)
				continue
			}
			opts := make(map[string]any, len(item))
			for k, v := range item {
				if k != "name" {
					opts[k] = v
				}
			}
			entries = append(entries, legacyEntry{name: name, opts: opts})
		default:
			log.Warn("dropping legacy plugin entry", "config", doc.Path(), "entry", item)
		}
	}

	if err := doc.Set(document.Path{pluginsKey}, map[string]any{}); err != nil {
		return false, fmt.Errorf("migrating plugins list: %w", err)
	}
	for _, e := range entries {
		if err := doc.Set(document.Path{pluginsKey, e.name}, nil); err != nil {
			return false, fmt.Errorf("migrating plugin %s: %w", e.name, err)
		}
		keys := make([]string, 0, len(e.opts))
		for k := range e.opts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := doc.Set(document.Path{pluginsKey, e.name, k}, e.opts[k]); err != nil {
				return false, fmt.Errorf("migrating plugin %s: %w", e.name, err)
			}
		}
	}

	log.Warn("converted legacy plugins list to a mapping", "config", doc.Path(), "plugins", len(entries))
	return true, nil
}
