package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyLogging = "logging"
	keyAuth    = "auth"
	keyDisplay = "display"
)

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. Sections absent in the overlay are left unchanged, as
// are fields a present section does not mention. Unknown keys are ignored.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		if err = unmarshalSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection decodes node over the current value of the field named by key.
func unmarshalSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyLogging:
		v := target.Logging
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Logging = v
	case keyAuth:
		v := target.Auth
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Auth = v
	case keyDisplay:
		v := target.Display
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Display = v
	}
	return nil
}
