package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Service declares one managed dev process.
type Service struct {
	// Command is the shell command line to run.
	Command string `yaml:"command"`

	// Dir is the working directory, relative to the project root.
	Dir string `yaml:"dir,omitempty"`

	// Env holds service-specific overrides applied on top of the merged
	// root environment.
	Env map[string]string `yaml:"env,omitempty"`
}

// Manifest is the parsed bosun.yaml.
type Manifest struct {
	Services map[string]Service `yaml:"services"`
}

// LoadManifest reads and validates the manifest for root. A missing
// manifest is not an error and yields an empty Manifest, mirroring the
// missing-.env policy: declaring services is optional.
func LoadManifest(root Root) (*Manifest, error) {
	data, err := os.ReadFile(root.ManifestFile())
	if err != nil {
		if os.IsNotExist(err) {
			return &Manifest{}, nil
		}

		return nil, fmt.Errorf("read %s: %w", ManifestName, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestName, err)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ManifestName, err)
	}

	return &m, nil
}

func (m *Manifest) validate() error {
	for name, svc := range m.Services {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("service name cannot be empty")
		}

		if strings.TrimSpace(svc.Command) == "" {
			return fmt.Errorf("service %q: command is required", name)
		}

		if filepath.IsAbs(svc.Dir) {
			return fmt.Errorf("service %q: dir must be relative to the project root", name)
		}
	}

	return nil
}

// ServiceNames returns declared service names in sorted order.
func (m *Manifest) ServiceNames() []string {
	names := make([]string, 0, len(m.Services))
	for name := range m.Services {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Lookup returns the named service declaration.
func (m *Manifest) Lookup(name string) (Service, bool) {
	svc, ok := m.Services[name]
	return svc, ok
}
