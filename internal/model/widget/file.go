package widget

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Catalog bundles the static text a widget is configured with.
type Catalog struct {
	Welcome string
	Prompts []string
	FAQ     *FAQ
}

// DefaultCatalog is the built-in Einfratech content.
func DefaultCatalog() Catalog {
	return Catalog{
		Welcome: WelcomeMessage,
		Prompts: BlinkingPrompts(),
		FAQ:     DefaultFAQ(),
	}
}

type catalogFile struct {
	Welcome string   `toml:"welcome"`
	Prompts []string `toml:"prompts"`
	FAQ     []Entry  `toml:"faq"`
}

// LoadCatalogFile reads a TOML catalog. Missing welcome or prompts fall back
// to the built-in values; the FAQ section replaces the built-in table.
//
//	welcome = "Hello!"
//	prompts = ["Hi"]
//
//	[[faq]]
//	question = "Where are you?"
//	answer = "India."
func LoadCatalogFile(path string) (Catalog, error) {
	var raw catalogFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Catalog{}, fmt.Errorf("decode faq file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return Catalog{}, fmt.Errorf("faq file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	faq, err := NewFAQ(raw.FAQ)
	if err != nil {
		return Catalog{}, fmt.Errorf("faq file %s: %w", path, err)
	}

	catalog := Catalog{Welcome: raw.Welcome, Prompts: raw.Prompts, FAQ: faq}
	if catalog.Welcome == "" {
		catalog.Welcome = WelcomeMessage
	}
	if len(catalog.Prompts) == 0 {
		catalog.Prompts = BlinkingPrompts()
	}
	return catalog, nil
}
