package config

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration
// including glob syntax and executable lookups. The configPath argument
// specifies the config file location to validate (empty string skips the
// config file check). This calls Validate() first for basic structural
// validation.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateIgnore(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Diff.Prerender {
		if _, err := exec.LookPath(c.Diff.DeltaPath); err != nil {
			warnings = append(warnings, ValidationWarning{
				Category: "Diff",
				Item:     "delta_path",
				Message:  fmt.Sprintf("%s not found; diffs render without delta", c.Diff.DeltaPath),
			})
		}
	}

	seen := make(map[string]bool, len(c.Tree.Ignore))
	for _, p := range c.Tree.Ignore {
		if seen[p] {
			warnings = append(warnings, ValidationWarning{
				Category: "Tree",
				Item:     p,
				Message:  "duplicate ignore pattern",
			})
		}
		seen[p] = true
	}

	return warnings
}

// validateFileAccess checks config file, data directory, and git executable.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("git_path", c.GitPath, executableExists),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func executableExists(path string) error {
	if path == "" {
		return nil
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("executable not found: %s", path)
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// validateIgnore checks tree.ignore entries are valid doublestar globs.
func (c *Config) validateIgnore() error {
	var errs criterio.FieldErrorsBuilder
	for i, pattern := range c.Tree.Ignore {
		if pattern == "" {
			errs = errs.Append(fmt.Sprintf("tree.ignore[%d]", i), fmt.Errorf("pattern is empty"))
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			errs = errs.Append(fmt.Sprintf("tree.ignore[%d]", i), fmt.Errorf("invalid glob %q", pattern))
		}
	}
	return errs.ToError()
}
