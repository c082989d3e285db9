package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/CreaseStack/internal/model"
)

// SettingsProfile is a named set of fold settings that can be applied to
// any project.
type SettingsProfile struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	IsBuiltIn   bool               `json:"is_built_in"`
	Settings    model.FoldSettings `json:"settings"`
}

// BuiltInProfiles returns the bundled search presets.
func BuiltInProfiles() []SettingsProfile {
	quick := model.DefaultSettings()
	quick.FullEstimation = false
	quick.SearchStepBudget = 200000
	quick.SearchTimeoutMs = 5000

	exhaustive := model.DefaultSettings()
	exhaustive.FullEstimation = true
	exhaustive.MaxSolutions = 100
	exhaustive.SearchStepBudget = 0
	exhaustive.SearchTimeoutMs = 0

	loose := model.DefaultSettings()
	loose.PointEps = 1e-3
	loose.AngleEps = 1e-3

	return []SettingsProfile{
		{Name: "Default", Description: "Balanced defaults", IsBuiltIn: true, Settings: model.DefaultSettings()},
		{Name: "Quick", Description: "First stacking only with a small search budget", IsBuiltIn: true, Settings: quick},
		{Name: "Exhaustive", Description: "Count every stacking without limits", IsBuiltIn: true, Settings: exhaustive},
		{Name: "Loose Tolerance", Description: "For hand-drawn or imported patterns", IsBuiltIn: true, Settings: loose},
	}
}

// DefaultProfilesPath returns the default file path for custom profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []SettingsProfile) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomProfiles loads custom profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]SettingsProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []SettingsProfile{}, nil
		}
		return nil, err
	}

	var profiles []SettingsProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}

	for i := range profiles {
		profiles[i].IsBuiltIn = false
	}
	return profiles, nil
}

// FindProfile returns the profile with the given case-insensitive name,
// searching built-in profiles before the custom ones.
func FindProfile(custom []SettingsProfile, name string) (SettingsProfile, bool) {
	for _, p := range append(BuiltInProfiles(), custom...) {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return SettingsProfile{}, false
}

// ExportProfile exports a single profile to a JSON file (for sharing).
func ExportProfile(path string, profile SettingsProfile) error {
	profile.IsBuiltIn = false
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (SettingsProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SettingsProfile{}, err
	}

	var profile SettingsProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return SettingsProfile{}, fmt.Errorf("failed to parse profile: %w", err)
	}

	profile.IsBuiltIn = false
	if profile.Name == "" {
		return SettingsProfile{}, errors.New("imported profile has no name")
	}
	return profile, nil
}
