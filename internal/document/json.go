package document

import (
	"bytes"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

type jsonDocument struct {
	path     string
	original []byte
	raw      []byte
}

func parseJSON(path string, data []byte) (*jsonDocument, error) {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if !gjson.ValidBytes(raw) {
		return nil, &ParseError{Path: path, Format: FormatJSON, Err: errors.New("invalid JSON")}
	}
	if res := gjson.ParseBytes(raw); !res.IsObject() {
		return nil, &ParseError{Path: path, Format: FormatJSON, Err: errors.New("top level is not an object")}
	}
	return &jsonDocument{path: path, original: data, raw: append([]byte(nil), raw...)}, nil
}

func (d *jsonDocument) Path() string     { return d.path }
func (d *jsonDocument) Format() Format   { return FormatJSON }
func (d *jsonDocument) Original() []byte { return d.original }

func (d *jsonDocument) Get(path Path) (any, bool) {
	if len(path) == 0 {
		return gjson.ParseBytes(d.raw).Value(), true
	}
	res := gjson.GetBytes(d.raw, jsonPath(path))
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

func (d *jsonDocument) Set(path Path, value any) error {
	if len(path) == 0 {
		return errors.New("cannot replace the whole document")
	}

	for i := 1; i < len(path); i++ {
		prefix := jsonPath(path[:i])
		res := gjson.GetBytes(d.raw, prefix)
		if !res.Exists() {
			break
		}
		if res.IsObject() {
			continue
		}
		if res.Type != gjson.Null {
			return &ConflictError{Path: append(Path(nil), path[:i]...), Kind: jsonKind(res)}
		}
		raw, err := sjson.SetRawBytes(d.raw, prefix, []byte("{}"))
		if err != nil {
			return err
		}
		d.raw = raw
	}

	raw, err := sjson.SetBytes(d.raw, jsonPath(path), value)
	if err != nil {
		return err
	}
	d.raw = raw
	return nil
}

func (d *jsonDocument) Serialize() ([]byte, error) {
	out := pretty.PrettyOptions(d.raw, &pretty.Options{Indent: "  "})
	return bytes.TrimRight(out, "\n"), nil
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`!`, `\!`,
	`:`, `\:`,
)

// jsonPath turns path into a gjson/sjson path with every key taken literally.
func jsonPath(path Path) string {
	parts := make([]string, len(path))
	for i, key := range path {
		parts[i] = pathEscaper.Replace(key)
	}
	return strings.Join(parts, ".")
}

func jsonKind(res gjson.Result) string {
	switch {
	case res.IsArray():
		return "sequence"
	case res.Type == gjson.String:
		return "string"
	case res.Type == gjson.Number:
		return "number"
	case res.Type == gjson.True, res.Type == gjson.False:
		return "boolean"
	}
	return "scalar"
}
