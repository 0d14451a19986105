package domain

import (
	"bytes"
	"encoding/json"
)

// Language is a storefront display language.
type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
)

// ParseLanguage maps anything other than "ar" to English.
func ParseLanguage(s string) Language {
	if s == string(Arabic) {
		return Arabic
	}
	return English
}

// Direction returns the text direction, "rtl" for Arabic and "ltr" otherwise.
func (l Language) Direction() string {
	if l == Arabic {
		return "rtl"
	}
	return "ltr"
}

// LocalizedText is a backend text field that is either a plain string or a
// map of language code to string. Any other JSON shape decodes to empty.
type LocalizedText struct {
	plain     string
	byLang    map[string]string
	localized bool
}

// Text returns a plain, language-independent LocalizedText.
func Text(s string) LocalizedText {
	return LocalizedText{plain: s}
}

// Localized returns a LocalizedText holding per-language values.
func Localized(values map[string]string) LocalizedText {
	m := make(map[string]string, len(values))
	for k, v := range values {
		m[k] = v
	}
	return LocalizedText{byLang: m, localized: true}
}

// Resolve returns the text for lang. Plain strings are returned as-is; maps
// fall back from lang to English to Arabic to "".
func (t LocalizedText) Resolve(lang Language) string {
	if !t.localized {
		return t.plain
	}
	for _, k := range [...]string{string(lang), string(English), string(Arabic)} {
		if v := t.byLang[k]; v != "" {
			return v
		}
	}
	return ""
}

// IsZero reports whether no language resolves to a non-empty value.
func (t LocalizedText) IsZero() bool {
	return t.Resolve(English) == ""
}

// IsLocalized reports whether the value was a language map.
func (t LocalizedText) IsLocalized() bool {
	return t.localized
}

// UnmarshalJSON never fails: unsupported shapes leave the value empty.
func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	*t = LocalizedText{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			t.plain = s
		}
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		t.localized = true
		t.byLang = make(map[string]string, len(raw))
		for k, v := range raw {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				t.byLang[k] = s
			}
		}
	}
	return nil
}

// MarshalJSON writes the value back in the shape it was read.
func (t LocalizedText) MarshalJSON() ([]byte, error) {
	if t.localized {
		return json.Marshal(t.byLang)
	}
	return json.Marshal(t.plain)
}
