package persona

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// OverridesFileName is the workspace file holding persona overrides.
const OverridesFileName = "personas.overrides.json"

// Override customizes one persona. Only soul, focus, and constraints may be
// overridden; identity fields are fixed by the base catalog.
type Override struct {
	Enabled           bool     `json:"enabled"`
	CustomSoul        string   `json:"customSoul,omitempty"`
	CustomFocus       []string `json:"customFocus,omitempty"`
	CustomConstraints []string `json:"customConstraints,omitempty"`
}

// OverridesFile is the on-disk override document.
type OverridesFile struct {
	Version      string              `json:"version"`
	LastModified time.Time           `json:"lastModified"`
	Overrides    map[string]Override `json:"overrides"`
}

const (
	overridesVersion = "1.0"
	maxSoulLen       = 500
	maxFocusItemLen  = 100
	maxConstraintLen = 200
)

// ValidateOverride checks one persona override against the catalog and the
// field length limits. Returns every violation found, not just the first.
func ValidateOverride(name string, o Override) []string {
	var errs []string
	if !Known(name) {
		errs = append(errs, fmt.Sprintf("%s: unknown persona", name))
	}
	if len(o.CustomSoul) > maxSoulLen {
		errs = append(errs, fmt.Sprintf("%s: customSoul exceeds %d character limit (%d chars)", name, maxSoulLen, len(o.CustomSoul)))
	}
	for i, f := range o.CustomFocus {
		if len(f) > maxFocusItemLen {
			errs = append(errs, fmt.Sprintf("%s: customFocus[%d] exceeds %d character limit (%d chars)", name, i, maxFocusItemLen, len(f)))
		}
	}
	for i, c := range o.CustomConstraints {
		if len(c) > maxConstraintLen {
			errs = append(errs, fmt.Sprintf("%s: customConstraints[%d] exceeds %d character limit (%d chars)", name, i, maxConstraintLen, len(c)))
		}
	}
	return errs
}

// ValidateOverridesFile checks the whole document.
func ValidateOverridesFile(f *OverridesFile) []string {
	var errs []string
	if f.Version != overridesVersion {
		errs = append(errs, fmt.Sprintf("invalid version: %q (expected %q)", f.Version, overridesVersion))
	}
	for name, o := range f.Overrides {
		errs = append(errs, ValidateOverride(name, o)...)
	}
	return errs
}

// overridesPath returns the override file location inside workspaceDir.
func overridesPath(workspaceDir string) string {
	return filepath.Join(workspaceDir, OverridesFileName)
}

// LoadOverrides reads and validates the workspace override file. A missing
// file is not an error; it returns (nil, nil) so callers fall back to the
// base catalog.
func LoadOverrides(workspaceDir string) (*OverridesFile, error) {
	path := overridesPath(workspaceDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read overrides file: %w", err)
	}

	var f OverridesFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse overrides file: %w", err)
	}
	if errs := ValidateOverridesFile(&f); len(errs) > 0 {
		return nil, fmt.Errorf("invalid overrides file: %s", strings.Join(errs, "; "))
	}
	return &f, nil
}

// SaveOverrides validates and writes the override document to the workspace.
func SaveOverrides(workspaceDir string, f *OverridesFile) error {
	if f.Version == "" {
		f.Version = overridesVersion
	}
	f.LastModified = time.Now().UTC()
	if errs := ValidateOverridesFile(f); len(errs) > 0 {
		return fmt.Errorf("invalid overrides: %s", strings.Join(errs, "; "))
	}

	if err := os.MkdirAll(workspaceDir, 0755); err != nil {
		return fmt.Errorf("create workspace directory: %w", err)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode overrides: %w", err)
	}
	if err := os.WriteFile(overridesPath(workspaceDir), data, 0644); err != nil {
		return fmt.Errorf("write overrides file: %w", err)
	}
	return nil
}

// Apply merges overrides onto the base catalog. Disabled overrides remove
// the persona from the result; enabled ones replace soul/focus/constraints
// where provided.
func Apply(base []Contract, f *OverridesFile) []Contract {
	if f == nil || len(f.Overrides) == 0 {
		return base
	}
	out := make([]Contract, 0, len(base))
	for _, c := range base {
		o, ok := f.Overrides[c.Name]
		if !ok {
			out = append(out, c)
			continue
		}
		if !o.Enabled {
			continue
		}
		if o.CustomSoul != "" {
			c.Soul = o.CustomSoul
		}
		if len(o.CustomFocus) > 0 {
			c.Focus = append([]string(nil), o.CustomFocus...)
		}
		if len(o.CustomConstraints) > 0 {
			c.Constraints = append([]string(nil), o.CustomConstraints...)
		}
		out = append(out, c)
	}
	return out
}
