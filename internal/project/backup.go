package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/CreaseStack/internal/model"
)

const backupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string              `json:"version"`
	CreatedAt string              `json:"created_at"`
	Config    model.AppConfig     `json:"config"`
	Templates model.TemplateStore `json:"templates"`
	Profiles  []SettingsProfile   `json:"profiles"`
}

// ExportAllData writes the app config, custom templates and custom
// settings profiles to a single JSON file. Built-in entries are not saved.
func ExportAllData(exportPath string, config model.AppConfig, templates model.TemplateStore, profiles []SettingsProfile) error {
	backup := BackupData{
		Version:   backupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Templates: model.NewTemplateStore(),
		Profiles:  []SettingsProfile{},
	}
	for _, t := range templates.Templates {
		if !t.BuiltIn {
			backup.Templates.Add(t)
		}
	}
	for _, p := range profiles {
		if !p.IsBuiltIn {
			backup.Profiles = append(backup.Profiles, p)
		}
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	if err := os.WriteFile(exportPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying it.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentProjects == nil {
		backup.Config.RecentProjects = []string{}
	}
	if backup.Templates.Templates == nil {
		backup.Templates = model.NewTemplateStore()
	}
	if backup.Profiles == nil {
		backup.Profiles = []SettingsProfile{}
	}
	return backup, nil
}
