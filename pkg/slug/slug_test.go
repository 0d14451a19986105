package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"brand name", "Acme Home", "acme-home"},
		{"category name", "Smart Watches", "smart-watches"},
		{"upper case", "ALL DEALS", "all-deals"},
		{"diacritics folded", "Crème Brûlée", "creme-brulee"},
		{"dotless i", "Kadın Giyim", "kadin-giyim"},
		{"dotted capital i", "İstanbul", "istanbul"},
		{"sharp s", "Straße", "strasse"},
		{"arabic dropped", "هواتف Phones", "phones"},
		{"arabic only", "هواتف", ""},
		{"punctuation", "Tea & Coffee: 2-in-1!", "tea-coffee-2-in-1"},
		{"currency", "under $100", "under-100"},
		{"surrounding whitespace", "  home  decor \t", "home-decor"},
		{"hyphen runs", "a - - b", "a-b"},
		{"edge hyphens", "-kids-", "kids"},
		{"digits", "2024", "2024"},
		{"empty", "", ""},
		{"symbols only", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.input))
		})
	}
}

func TestCategory(t *testing.T) {
	tests := map[string]string{
		"":                "all",
		"   ":             "all",
		"Phones":          "phones",
		" smart-watches ": "smart-watches",
		"ALL":             "all",
	}
	for in, want := range tests {
		assert.Equal(t, want, Category(in), "Category(%q)", in)
	}
}

func TestList(t *testing.T) {
	assert.Nil(t, List(""))
	assert.Nil(t, List("   "))
	assert.Equal(t, []string{"acme"}, List("acme"))
	assert.Equal(t, []string{"acme", "globex"}, List("acme, globex,,acme"))
	assert.Empty(t, List(",,"))
}
