package model

import (
	"time"

	"github.com/google/uuid"
)

// PatternTemplate represents a reusable crease pattern with its settings but
// no computation results.
type PatternTemplate struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	CreatedAt     string        `json:"created_at"`
	UpdatedAt     string        `json:"updated_at"`
	BuiltIn       bool          `json:"built_in,omitempty"`
	CreasePattern CreasePattern `json:"crease_pattern"`
	Settings      FoldSettings  `json:"settings"`
}

// NewPatternTemplate creates a new template from the given crease pattern.
func NewPatternTemplate(name, description string, cp CreasePattern, settings FoldSettings) PatternTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return PatternTemplate{
		ID:            uuid.New().String()[:8],
		Name:          name,
		Description:   description,
		CreatedAt:     now,
		UpdatedAt:     now,
		CreasePattern: cp.Clone(),
		Settings:      settings,
	}
}

// ToProject creates a new Project from this template.
// Lines get fresh IDs so they are independent of the template.
func (t PatternTemplate) ToProject(projectName string) Project {
	lines := make([]Line, len(t.CreasePattern.Lines))
	for i, l := range t.CreasePattern.Lines {
		lines[i] = NewLine(l.P0.X, l.P0.Y, l.P1.X, l.P1.Y, l.Type)
	}

	p := NewProject()
	p.Name = projectName
	p.CreasePattern = CreasePattern{PaperSize: t.CreasePattern.PaperSize, Lines: lines}
	p.Settings = t.Settings
	return p
}

// BuiltInTemplates returns the bundled starter patterns on a square of the given size.
func BuiltInTemplates(size float64) []PatternTemplate {
	h := size / 2
	settings := DefaultSettings()

	blank := NewSquarePaper(size)

	diagonal := NewSquarePaper(size)
	diagonal.Add(-h, -h, h, h, LineValley)

	book := NewSquarePaper(size)
	book.Add(0, -h, 0, h, LineValley)

	cross := NewSquarePaper(size)
	cross.Add(0, 0, h, 0, LineValley).
		Add(0, 0, 0, h, LineValley).
		Add(0, 0, -h, 0, LineValley).
		Add(0, 0, 0, -h, LineMountain)

	waterbomb := NewSquarePaper(size)
	waterbomb.Add(0, 0, h, 0, LineMountain).
		Add(0, 0, h, h, LineValley).
		Add(0, 0, 0, h, LineMountain).
		Add(0, 0, -h, h, LineValley).
		Add(0, 0, -h, 0, LineMountain).
		Add(0, 0, -h, -h, LineValley).
		Add(0, 0, 0, -h, LineValley).
		Add(0, 0, h, -h, LineValley)

	specs := []struct {
		name, desc string
		cp         CreasePattern
	}{
		{"Blank Square", "Uncreased square sheet", blank},
		{"Diagonal Fold", "Single valley fold along the diagonal", diagonal},
		{"Book Fold", "Single valley fold through the centre", book},
		{"Double Fold", "Sheet folded in half twice (three valleys and one mountain)", cross},
		{"Waterbomb Base", "Eight creases around the centre (three mountains and five valleys)", waterbomb},
	}

	templates := make([]PatternTemplate, len(specs))
	for i, s := range specs {
		templates[i] = NewPatternTemplate(s.name, s.desc, s.cp, settings)
		templates[i].BuiltIn = true
	}
	return templates
}

// TemplateStore holds a collection of pattern templates.
type TemplateStore struct {
	Templates []PatternTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []PatternTemplate{},
	}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t PatternTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *PatternTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Names returns the template names in store order.
func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *PatternTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}
