// Package plugin installs and configures gateway plugins.
//
// It ties the pieces together: npm fetches the package, its manifest declares
// the options and policies, the user answers prompts, and the results are
// merged into the system config (plugins mapping) and the gateway config
// (policies list).
package plugin

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/amerryma/express-gateway/internal/log"
	"github.com/amerryma/express-gateway/internal/manifest"
	"github.com/amerryma/express-gateway/internal/prompt"
)

const (
	enableMessage   = "Would you like to enable this plugin in system config?"
	policiesMessage = "Would you like to add new policies to gateway config?"
)

// OptionValue is a typed option value ready to be stored in the system config.
type OptionValue struct {
	Name  string
	Value any
}

// Answers holds everything the user decided during an install.
type Answers struct {
	// Options hold only the non-empty answers, in declaration order.
	Options      []OptionValue
	EnablePlugin bool
	AddPolicies  bool
}

// ValidateOption checks an answer against the option's declaration.
// An empty answer is accepted unless the option is required.
func ValidateOption(o manifest.Option, answer string) error {
	if err := checkType(o); err != nil {
		return err
	}
	if answer == "" {
		if o.Required {
			return &OptionValidationError{Option: o.Name, Reason: "is required"}
		}
		return nil
	}

	switch o.Type {
	case manifest.TypeNumber:
		if _, err := parseNumber(answer); err != nil {
			return &OptionValidationError{Option: o.Name, Reason: "must be a number"}
		}
	case manifest.TypeBoolean:
		if answer != "true" && answer != "false" {
			return &OptionValidationError{Option: o.Name, Reason: `must be "true" or "false"`}
		}
	}
	return nil
}

// CoerceOption validates a non-empty answer and converts it to the option's type.
func CoerceOption(o manifest.Option, answer string) (any, error) {
	if err := ValidateOption(o, answer); err != nil {
		return nil, err
	}
	switch o.Type {
	case manifest.TypeNumber:
		return parseNumber(answer)
	case manifest.TypeBoolean:
		return strconv.ParseBool(answer)
	}
	return answer, nil
}

func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a finite number")
	}
	return f, nil
}

func checkType(o manifest.Option) error {
	switch o.Type {
	case manifest.TypeString, manifest.TypeNumber, manifest.TypeBoolean:
		return nil
	}
	return &InvalidOptionTypeError{Option: o.Name, Type: o.Type}
}

// checkTypes reports every option with an unsupported type. Such an option
// can never be answered, so it is caught before any question is asked.
func checkTypes(m *manifest.Manifest) error {
	var errs []error
	for _, o := range m.Options {
		if err := checkType(o); err != nil {
			log.Error(err.Error(), "plugin", m.Package, "option", o.Name, "type", o.Type)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PromptOptions asks for every declared option in order. previous holds the
// values currently in the system config and seeds the defaults.
func PromptOptions(p prompt.Prompter, m *manifest.Manifest, previous map[string]any) ([]OptionValue, error) {
	if err := checkTypes(m); err != nil {
		return nil, err
	}

	var values []OptionValue
	for _, o := range m.Options {
		answer, err := p.Input(prompt.Input{
			Message:  fmt.Sprintf("Set value for %s [%s]", o.Name, o.Label()),
			Default:  formatDefault(previous[o.Name]),
			Validate: func(s string) error { return ValidateOption(o, s) },
		})
		if err != nil {
			return nil, err
		}
		if answer == "" {
			continue
		}
		v, err := CoerceOption(o, answer)
		if err != nil {
			return nil, err
		}
		values = append(values, OptionValue{Name: o.Name, Value: v})
	}
	return values, nil
}

// CollectAnswers asks for the plugin's options followed by the two
// confirmations of an install.
func CollectAnswers(p prompt.Prompter, m *manifest.Manifest, previous map[string]any) (*Answers, error) {
	opts, err := PromptOptions(p, m, previous)
	if err != nil {
		return nil, err
	}

	a := &Answers{Options: opts}
	if a.EnablePlugin, err = p.Confirm(enableMessage, true); err != nil {
		return nil, err
	}
	if a.AddPolicies, err = p.Confirm(policiesMessage, true); err != nil {
		return nil, err
	}
	return a, nil
}

// ParseOptionPairs turns key=value arguments into option values. Every key
// must be declared by the manifest; values follow the prompt rules.
func ParseOptionPairs(m *manifest.Manifest, pairs []string) ([]OptionValue, error) {
	if err := checkTypes(m); err != nil {
		return nil, err
	}

	var values []OptionValue
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: option %q must be in key=value form", errInvalidArgument, pair)
		}
		o, ok := m.Option(key)
		if !ok {
			return nil, fmt.Errorf("%w: plugin %s has no option %q", errInvalidArgument, pluginLabel(m), key)
		}
		if err := ValidateOption(o, raw); err != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidArgument, err)
		}
		if raw == "" {
			continue
		}
		v, err := CoerceOption(o, raw)
		if err != nil {
			return nil, err
		}
		values = append(values, OptionValue{Name: o.Name, Value: v})
	}
	return values, nil
}

func pluginLabel(m *manifest.Manifest) string {
	if m.Name != "" {
		return m.Name
	}
	return m.Package
}

// formatDefault renders a value from the system config as prompt text.
// Mappings and lists have no text form an answer could round-trip, so they
// offer no default.
func formatDefault(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	}
	return ""
}
