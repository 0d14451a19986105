package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, Arabic, ParseLanguage("ar"))
	assert.Equal(t, English, ParseLanguage("en"))
	assert.Equal(t, English, ParseLanguage("fr"))
	assert.Equal(t, English, ParseLanguage(""))
}

func TestLanguage_Direction(t *testing.T) {
	assert.Equal(t, "rtl", Arabic.Direction())
	assert.Equal(t, "ltr", English.Direction())
}

func TestLocalizedText_Unmarshal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		lang      Language
		want      string
		localized bool
	}{
		{"plain string", `"Phone"`, Arabic, "Phone", false},
		{"map active", `{"en": "Phone", "ar": "هاتف"}`, Arabic, "هاتف", true},
		{"map english fallback", `{"en": "Phone"}`, Arabic, "Phone", true},
		{"map arabic fallback", `{"ar": "هاتف"}`, English, "هاتف", true},
		{"non-string values ignored", `{"en": 5, "ar": "هاتف"}`, English, "هاتف", true},
		{"number", `12`, English, "", false},
		{"array", `["a"]`, English, "", false},
		{"null", `null`, English, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lt LocalizedText
			require.NoError(t, json.Unmarshal([]byte(tt.input), &lt))
			assert.Equal(t, tt.want, lt.Resolve(tt.lang))
			assert.Equal(t, tt.localized, lt.IsLocalized())
		})
	}
}

func TestLocalizedText_MarshalKeepsShape(t *testing.T) {
	out, err := json.Marshal(Text("Phone"))
	require.NoError(t, err)
	assert.JSONEq(t, `"Phone"`, string(out))

	out, err = json.Marshal(Localized(map[string]string{"en": "Phone", "ar": "هاتف"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"en": "Phone", "ar": "هاتف"}`, string(out))
}

func TestLocalizedText_IsZero(t *testing.T) {
	assert.True(t, LocalizedText{}.IsZero())
	assert.True(t, Localized(map[string]string{"en": ""}).IsZero())
	assert.False(t, Localized(map[string]string{"ar": "x"}).IsZero())
	assert.False(t, Text("x").IsZero())
}

func TestLocalized_CopiesInput(t *testing.T) {
	src := map[string]string{"en": "a"}
	lt := Localized(src)
	src["en"] = "b"
	assert.Equal(t, "a", lt.Resolve(English))
}
