package messages_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/reoring/govalid/messages"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		args     []any
		want     string
	}{
		{"strings", "%s is not a %s", []any{"v", "string"}, "v is not a string"},
		{"integral float", "%s must be between %s and %s", []any{"v", 1.0, 3.0}, "v must be between 1 and 3"},
		{"fraction", "%s cannot be less than %s", []any{"v", 1.5}, "v cannot be less than 1.5"},
		{"digit", "%d items", []any{"4"}, "4 items"},
		{"digit not a number", "%d items", []any{"four"}, "NaN items"},
		{"json", "got %j", []any{map[string]int{"a": 1}}, `got {"a":1}`},
		{"percent", "100%% of %s", []any{"v"}, "100% of v"},
		{"missing args", "%s and %s", []any{"v"}, "v and %s"},
		{"regexp", "%s", []any{regexp.MustCompile(`^\d+$`)}, `/^\d+$/`},
		{"slice", "%s", []any{[]any{"a", 1, true}}, "a,1,true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messages.Format(tt.template, tt.args...))
		})
	}
}

func TestMerge(t *testing.T) {
	base := messages.English()
	override := &messages.Messages{
		Required: "%s must be provided",
		Types:    messages.TypeMessages{String: "%s should be text"},
	}

	merged := messages.Merge(base, override)

	assert.Equal(t, "%s must be provided", merged.Required)
	assert.Equal(t, "%s should be text", merged.Types.String)
	assert.Equal(t, base.Types.Number, merged.Types.Number)
	assert.Equal(t, "%s is required", base.Required, "base must not be modified")
}

func TestMerge_NilOverride(t *testing.T) {
	base := messages.English()
	merged := messages.Merge(base, nil)
	assert.Equal(t, base, merged)
	assert.NotSame(t, base, merged)
}

func TestSetLanguage(t *testing.T) {
	t.Cleanup(func() { messages.SetLanguage("en") })

	tag := messages.SetLanguage("zh-CN")
	assert.Equal(t, language.Chinese, tag)
	assert.Equal(t, "%s是必需的", messages.Default().Required)

	tag = messages.SetLanguage("fr")
	assert.Equal(t, language.English, tag)
	assert.Equal(t, "%s is required", messages.Default().Required)
}

func TestSet(t *testing.T) {
	t.Cleanup(func() { messages.Set(nil) })

	custom := messages.English()
	custom.Required = "missing %s"
	messages.Set(custom)
	custom.Required = "mutated later"

	assert.Equal(t, "missing %s", messages.Default().Required)

	messages.Set(nil)
	assert.Equal(t, "%s is required", messages.Default().Required)
}

func TestLoadYAML(t *testing.T) {
	m, err := messages.LoadYAML([]byte(`
required: "%s must be provided"
array:
  range: "%s needs %s to %s items"
`))
	require.NoError(t, err)
	assert.Equal(t, "%s must be provided", m.Required)
	assert.Equal(t, "%s needs %s to %s items", m.Array.Range)
	assert.Empty(t, m.Types.String)

	_, err = messages.LoadYAML([]byte("required: [unterminated"))
	assert.ErrorIs(t, err, messages.ErrInvalidTable)
}

func TestLoadJSON(t *testing.T) {
	m, err := messages.LoadJSON([]byte(`{"enum":"%s not in %s","types":{"url":"bad url %s"}}`))
	require.NoError(t, err)
	assert.Equal(t, "%s not in %s", m.Enum)
	assert.Equal(t, "bad url %s", m.Types.URL)

	_, err = messages.LoadJSON([]byte(`{`))
	assert.ErrorIs(t, err, messages.ErrInvalidTable)
}

func TestTypeMessages_For(t *testing.T) {
	m := messages.English()
	assert.Equal(t, "%s is not an %s", m.Types.For("array"))
	assert.Equal(t, "%s is not a valid %s", m.Types.For("url"))
	assert.Empty(t, m.Types.For("any"))
}
