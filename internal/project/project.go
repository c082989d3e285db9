// Package project persists projects, app configuration, templates and
// settings profiles as JSON files.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/CreaseStack/internal/model"
)

// Extension is the file extension used for saved projects.
const Extension = ".crease"

// Save writes the project as indented JSON, creating parent directories.
func Save(path string, p model.Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// Load reads a project saved by Save.
func Load(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to read project file: %w", err)
	}
	var p model.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project file: %w", err)
	}
	if p.CreasePattern.Lines == nil {
		p.CreasePattern.Lines = []model.Line{}
	}
	if p.Name == "" {
		p.Name = "Untitled"
	}
	return p, nil
}
