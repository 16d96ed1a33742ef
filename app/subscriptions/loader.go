// Package subscriptions loads the optional seed file of feeds to
// register on startup.
package subscriptions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Subscription struct {
	URL            string `yaml:"url"`
	FetchImages    bool   `yaml:"fetch_images"`
	MaxSizeBytes   int64  `yaml:"max_size_bytes"`
	ExtractContent bool   `yaml:"extract_content"`
}

type file struct {
	Feeds []Subscription `yaml:"feeds"`
}

// Load reads the subscriptions file at path. A missing file is not an
// error, it just means there is nothing to seed.
func Load(path string) ([]Subscription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read subscriptions file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse subscriptions file: %w", err)
	}

	var subs []Subscription
	for _, sub := range f.Feeds {
		if sub.URL == "" {
			continue
		}
		subs = append(subs, sub)
	}

	return subs, nil
}
