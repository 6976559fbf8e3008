// Package content holds the templated marketing copy used when AI
// generation is unavailable or returns malformed output. Templates live in
// an embedded YAML catalog so copy changes don't require code changes
package content

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultCatalog []byte

// Copy is one complete set of campaign copy
type Copy struct {
	Subject  string `yaml:"subject" json:"subject"`
	Headline string `yaml:"headline" json:"headline"`
	Body     string `yaml:"body" json:"body"`
	CTA      string `yaml:"cta" json:"cta"`
}

// Catalog maps tone names to fallback copy templates
type Catalog struct {
	Default Copy            `yaml:"default"`
	Tones   map[string]Copy `yaml:"tones"`
}

// LoadCatalog parses a YAML template catalog
func LoadCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}
	return &catalog, nil
}

// DefaultCatalog returns the embedded template catalog
func DefaultCatalog() *Catalog {
	catalog, err := LoadCatalog(defaultCatalog)
	if err != nil {
		// The embedded catalog is validated by tests; a parse failure here
		// is a packaging bug
		panic(err)
	}
	return catalog
}

// Fallback returns the template copy for a tone with the campaign name
// substituted in, defaulting when the tone is unknown
func (c *Catalog) Fallback(campaignName, tone string) Copy {
	tpl := c.Default
	if t, ok := c.Tones[strings.ToLower(tone)]; ok {
		tpl = t
	}

	expand := func(s string) string {
		return strings.ReplaceAll(s, "{campaign}", campaignName)
	}

	return Copy{
		Subject:  expand(tpl.Subject),
		Headline: expand(tpl.Headline),
		Body:     expand(tpl.Body),
		CTA:      expand(tpl.CTA),
	}
}
