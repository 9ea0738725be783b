package seed

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is a named seeding profile. Presets can be built in or loaded from
// a YAML file.
type Preset struct {
	Name    string `yaml:"name"`
	Users   int    `yaml:"users"`
	Posts   int    `yaml:"posts"`
	MaxDays int    `yaml:"max_days"`
	CleanDB bool   `yaml:"clean_db"`
	Comment string `yaml:"comment,omitempty"`
}

var builtinPresets = map[string]Preset{
	"minimal": {
		Name:    "minimal",
		Users:   5,
		Posts:   20,
		MaxDays: 14,
		Comment: "Smoke-test sized dataset.",
	},
	"standard": {
		Name:    "standard",
		Users:   50,
		Posts:   200,
		MaxDays: 90,
		Comment: "Default development dataset.",
	},
	"megapopulated": {
		Name:    "megapopulated",
		Users:   500,
		Posts:   5000,
		MaxDays: 365,
		Comment: "Stress dataset for pagination and trending queries.",
	},
}

// LoadPresetFile parses a preset definition from a YAML file.
func LoadPresetFile(path string) (Preset, error) {
	var p Preset
	data, err := os.ReadFile(path) // #nosec G304: operator-supplied path
	if err != nil {
		return p, fmt.Errorf("read preset file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse preset file %s: %w", path, err)
	}
	if p.Users <= 0 || p.Posts < 0 {
		return p, fmt.Errorf("preset %q must declare a positive user count", p.Name)
	}
	return p, nil
}

// ResolvePreset returns a built-in preset by name, or loads one from disk
// when the argument looks like a file path.
func ResolvePreset(nameOrPath string) (Preset, error) {
	if strings.ContainsAny(nameOrPath, "/.") {
		return LoadPresetFile(nameOrPath)
	}
	p, ok := builtinPresets[strings.ToLower(nameOrPath)]
	if !ok {
		known := make([]string, 0, len(builtinPresets))
		for k := range builtinPresets {
			known = append(known, k)
		}
		return Preset{}, fmt.Errorf("unknown preset %q (built-in: %s)", nameOrPath, strings.Join(known, ", "))
	}
	return p, nil
}

// ApplyPreset runs a full seed according to the named preset.
func (s *Seeder) ApplyPreset(nameOrPath string) error {
	p, err := ResolvePreset(nameOrPath)
	if err != nil {
		return err
	}
	log.Printf("🌱 Applying preset %q: %d users, %d posts", p.Name, p.Users, p.Posts)

	if p.CleanDB {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("preset cleanup failed: %w", err)
		}
	}
	if p.MaxDays > 0 {
		s.factory.opts.MaxDays = p.MaxDays
	}

	users, err := s.SeedSocialMesh(p.Users)
	if err != nil {
		return err
	}
	_, err = s.SeedEngagement(users, p.Posts)
	return err
}
