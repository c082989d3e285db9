package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/CreaseStack/internal/model"
)

// DefaultTemplatePath returns the default file path for the templates store.
// This is located at ~/.creasestack/templates.json.
func DefaultTemplatePath() string {
	return filepath.Join(DefaultConfigDir(), "templates.json")
}

// SaveTemplates writes the template store to a JSON file. Built-in templates
// are not persisted.
func SaveTemplates(path string, store model.TemplateStore) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create template directory: %w", err)
	}
	custom := model.NewTemplateStore()
	for _, t := range store.Templates {
		if !t.BuiltIn {
			custom.Add(t)
		}
	}
	data, err := json.MarshalIndent(custom, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal templates: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadTemplates reads a template store from a JSON file.
// If the file does not exist, returns an empty store.
func LoadTemplates(path string) (model.TemplateStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewTemplateStore(), nil
		}
		return model.TemplateStore{}, err
	}
	var store model.TemplateStore
	if err := json.Unmarshal(data, &store); err != nil {
		return model.TemplateStore{}, fmt.Errorf("failed to parse templates: %w", err)
	}
	if store.Templates == nil {
		store.Templates = []model.PatternTemplate{}
	}
	return store, nil
}

// AllTemplates returns the built-in templates on paper of the given size
// followed by the custom templates stored at path.
func AllTemplates(path string, paperSize float64) (model.TemplateStore, error) {
	store := model.NewTemplateStore()
	for _, t := range model.BuiltInTemplates(paperSize) {
		store.Add(t)
	}
	custom, err := LoadTemplates(path)
	if err != nil {
		return store, err
	}
	for _, t := range custom.Templates {
		store.Add(t)
	}
	return store, nil
}

// FindTemplate looks a template up by ID, then by case-insensitive name.
func FindTemplate(store model.TemplateStore, key string) (model.PatternTemplate, bool) {
	if t := store.FindByID(key); t != nil {
		return *t, true
	}
	for _, t := range store.Templates {
		if strings.EqualFold(t.Name, key) {
			return t, true
		}
	}
	return model.PatternTemplate{}, false
}
