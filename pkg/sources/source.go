// Package sources keeps a catalog of downloadable datasheet bundles and
// fetches them into the library directory.
package sources

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ErrUnknownSource is returned for a name that is not in the catalog.
var ErrUnknownSource = errors.New("unknown source")

var validName = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// Source is one datasheet bundle: a plain .txt file or a ZIP of .txt files.
// The check fields are filled from the catalog database.
type Source struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`

	LastCheck  *int64  `yaml:"-"`
	LastStatus *int    `yaml:"-"`
	LastError  *string `yaml:"-"`
	UpdatedAt  int64   `yaml:"-"`
}

// Validate checks that the source can be stored and fetched.
func (s Source) Validate() error {
	if !validName.MatchString(s.Name) {
		return fmt.Errorf("source name %q: must be lowercase letters, digits, '.', '_' or '-'", s.Name)
	}
	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source %s: url %q must be absolute http(s)", s.Name, s.URL)
	}
	return nil
}

type catalogFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadCatalogFile reads the YAML seed catalog:
//
//	sources:
//	  - name: ti-regulators
//	    url: https://example.com/ti-regulators.zip
//	    description: TI linear regulators
func LoadCatalogFile(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse source catalog %s: %w", path, err)
	}

	seen := make(map[string]bool, len(f.Sources))
	for _, s := range f.Sources {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("source catalog %s: %w", path, err)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("source catalog %s: duplicate source %q", path, s.Name)
		}
		seen[s.Name] = true
	}
	return f.Sources, nil
}
