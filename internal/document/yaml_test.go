package document

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setAndRender(t *testing.T, original string, path Path, value any) string {
	t.Helper()
	doc, err := Parse("gateway.config.yml", []byte(original))
	require.NoError(t, err)
	require.NoError(t, doc.Set(path, value))
	out, err := doc.Serialize()
	require.NoError(t, err)
	return string(out)
}

func TestYAMLAppendKeepsComments(t *testing.T) {
	original := `# Gateway system settings
db:
  redis:
    emulate: true # in-memory
    namespace: EG

crypto:
  cipherKey: sensitiveKey
`
	got := setAndRender(t, original, Path{"plugins", "example"}, map[string]any{"baseUrl": "http://localhost"})

	want := `# Gateway system settings
db:
  redis:
    emulate: true # in-memory
    namespace: EG

crypto:
  cipherKey: sensitiveKey

plugins:
  example:
    baseUrl: http://localhost`
	assert.Equal(t, want, got)
}

func TestYAMLSequenceKeepsIndentStyle(t *testing.T) {
	original := `http:
    port: 8080
policies:
- basic-auth
- proxy
pipelines:
    default:
        apiEndpoints:
        - api
`
	got := setAndRender(t, original, Path{"policies"}, []any{"basic-auth", "proxy", "example-policy"})

	want := `http:
    port: 8080
policies:
- basic-auth
- proxy
- example-policy
pipelines:
    default:
        apiEndpoints:
        - api`
	assert.Equal(t, want, got)
}

func TestYAMLReplaceScalarKeepsLineComment(t *testing.T) {
	original := "plugins:\n  example:\n    timeout: 10 # seconds\n"
	got := setAndRender(t, original, Path{"plugins", "example", "timeout"}, 30)
	assert.Equal(t, "plugins:\n  example:\n    timeout: 30 # seconds", got)
}

func TestYAMLEmptyDocument(t *testing.T) {
	got := setAndRender(t, "", Path{"plugins", "example", "package"}, "eg-example")
	assert.Equal(t, "plugins:\n  example:\n    package: eg-example", got)
}

func TestYAMLNullParentBecomesMapping(t *testing.T) {
	got := setAndRender(t, "plugins:\n", Path{"plugins", "example", "x"}, "y")
	assert.Equal(t, "plugins:\n  example:\n    x: y", got)
}

func TestYAMLEmptyFlowMappingBecomesBlock(t *testing.T) {
	got := setAndRender(t, "plugins: {}\n", Path{"plugins", "example", "x"}, "y")
	assert.Equal(t, "plugins:\n  example:\n    x: y", got)
}

func TestYAMLKeepsCRLF(t *testing.T) {
	got := setAndRender(t, "a: 1\r\n", Path{"b"}, "x")
	assert.Equal(t, "a: 1\r\n\r\nb: x", got)
}

func TestYAMLNoDoubleBlankLine(t *testing.T) {
	got := setAndRender(t, "a: 1\n\n", Path{"b"}, "x")
	assert.Equal(t, "a: 1\n\nb: x", got)
}

func TestYAMLUnchangedRoundTrip(t *testing.T) {
	original := "# top\nhttp:\n  port: 8080   # trailing\n\n\npolicies: [a, b]\n"
	doc, err := Parse("gateway.config.yml", []byte(original))
	require.NoError(t, err)

	out, err := doc.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "# top\nhttp:\n  port: 8080   # trailing\n\n\npolicies: [a, b]", string(out))
}

func TestYAMLGet(t *testing.T) {
	doc, err := Parse("system.config.yml", []byte("plugins:\n  example:\n    timeout: 30\n    flag:\n"))
	require.NoError(t, err)

	v, ok := doc.Get(Path{"plugins", "example", "timeout"})
	require.True(t, ok)
	assert.EqualValues(t, 30, v)

	v, ok = doc.Get(Path{"plugins", "example", "flag"})
	assert.True(t, ok)
	assert.Nil(t, v)

	_, ok = doc.Get(Path{"plugins", "missing"})
	assert.False(t, ok)

	_, ok = doc.Get(Path{"plugins", "example", "timeout", "deeper"})
	assert.False(t, ok)
}

func TestYAMLConflict(t *testing.T) {
	doc, err := Parse("system.config.yml", []byte("plugins: [a, b]\n"))
	require.NoError(t, err)

	err = doc.Set(Path{"plugins", "example"}, true)
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, Path{"plugins"}, conflict.Path)
	assert.Equal(t, "sequence", conflict.Kind)
}

func TestYAMLParseErrors(t *testing.T) {
	_, err := Parse("system.config.yml", []byte("a: [1, 2\n"))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, FormatYAML, perr.Format)

	_, err = Parse("system.config.yml", []byte("- a\n- b\n"))
	require.True(t, errors.As(err, &perr))
}

func TestDetectIndent(t *testing.T) {
	doc, err := parseYAML("x.yml", []byte("a:\n    b:\n        c: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, doc.indent)

	doc, err = parseYAML("x.yml", []byte("a: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.indent)
}
