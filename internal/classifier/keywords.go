package classifier

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeywordsVersion is the keyword file format this package understands.
const KeywordsVersion = 1

//go:embed keywords.yaml
var defaultKeywords []byte

// KeywordSet holds the data that drives classification.
type KeywordSet struct {
	Version     int      `yaml:"version"`
	Fallthrough bool     `yaml:"fallthrough"`
	Headline    []string `yaml:"headline"`
	Text        []string `yaml:"text"`
}

// DefaultKeywords returns the built-in keyword set.
func DefaultKeywords() *KeywordSet {
	set, err := ParseKeywords(defaultKeywords)
	if err != nil {
		panic(fmt.Sprintf("embedded keywords are invalid: %v", err))
	}
	return set
}

// LoadKeywords reads a keyword set from path. An empty path yields the built-in set.
func LoadKeywords(path string) (*KeywordSet, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultKeywords(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keywords file %q: %w", path, err)
	}

	set, err := ParseKeywords(data)
	if err != nil {
		return nil, fmt.Errorf("keywords file %q: %w", path, err)
	}
	return set, nil
}

// ParseKeywords decodes and normalizes a YAML keyword set.
func ParseKeywords(data []byte) (*KeywordSet, error) {
	var set KeywordSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode keywords: %w", err)
	}

	if set.Version != KeywordsVersion {
		return nil, fmt.Errorf("unsupported keywords version %d (want %d)", set.Version, KeywordsVersion)
	}

	set.Headline = normalize(set.Headline)
	set.Text = normalize(set.Text)

	if len(set.Headline) == 0 && len(set.Text) == 0 {
		return nil, errors.New("keyword set is empty")
	}

	return &set, nil
}

func normalize(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		out = append(out, k)
	}
	return out
}
