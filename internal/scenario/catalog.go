package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Catalog is the YAML file format for a hand-written scenario set.
type Catalog struct {
	// Name identifies the catalogue in artifacts and log lines.
	Name string `yaml:"name"`

	// Scenarios lists the scenario templates.
	Scenarios []CatalogScenario `yaml:"scenarios"`
}

// CatalogScenario is the YAML shape of one scenario.
type CatalogScenario struct {
	ID          string           `yaml:"id"`
	Description string           `yaml:"description,omitempty"`
	Commands    []CatalogCommand `yaml:"commands"`
}

// CatalogCommand is the YAML shape of one command.
type CatalogCommand struct {
	Name string `yaml:"name"`

	// Payload holds the raw YAML-decoded payload. Values are converted
	// to the closed Value model during LoadCatalog.
	Payload map[string]any `yaml:"payload"`
}

// LoadCatalog reads and parses a scenario catalogue YAML file.
// Unknown fields are rejected so typos fail loudly, and every scenario
// is validated, including ID uniqueness across the file.
func LoadCatalog(path string) ([]*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file: %w", err)
	}

	var catalog Catalog
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(catalog.Scenarios) == 0 {
		return nil, fmt.Errorf("catalogue %q: scenarios list is required and must be non-empty", path)
	}

	scenarios := make([]*Scenario, 0, len(catalog.Scenarios))
	seen := make(map[string]bool, len(catalog.Scenarios))
	for i, raw := range catalog.Scenarios {
		s, err := convertCatalogScenario(raw)
		if err != nil {
			return nil, fmt.Errorf("catalogue %q: scenarios[%d]: %w", path, i, err)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("catalogue %q: %w", path, err)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("catalogue %q: duplicate scenario id %q", path, s.ID)
		}
		seen[s.ID] = true
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// LoadCatalogDir loads every *.yaml and *.yml file in a directory,
// in lexical filename order, and concatenates the scenarios.
// IDs must be unique across the whole directory.
func LoadCatalogDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no catalogue files (*.yaml) in %s", dir)
	}
	sort.Strings(files)

	var all []*Scenario
	seen := make(map[string]string)
	for _, file := range files {
		scenarios, err := LoadCatalog(file)
		if err != nil {
			return nil, err
		}
		for _, s := range scenarios {
			if prev, ok := seen[s.ID]; ok {
				return nil, fmt.Errorf("scenario id %q in %s already defined in %s", s.ID, file, prev)
			}
			seen[s.ID] = file
		}
		all = append(all, scenarios...)
	}
	return all, nil
}

func convertCatalogScenario(raw CatalogScenario) (*Scenario, error) {
	s := &Scenario{
		ID:          raw.ID,
		Description: raw.Description,
		Commands:    make([]Command, len(raw.Commands)),
	}
	for i, cmd := range raw.Commands {
		payload := cmd.Payload
		if payload == nil {
			payload = map[string]any{}
		}
		converted, err := FromGo(payload)
		if err != nil {
			return nil, fmt.Errorf("commands[%d] (%s): %w", i, cmd.Name, err)
		}
		s.Commands[i] = Command{Name: cmd.Name, Payload: converted.(Document)}
	}
	return s, nil
}
