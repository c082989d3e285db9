package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default fold settings applied to new projects
	DefaultPointEps         float64 `json:"default_point_eps"`
	DefaultAngleEps         float64 `json:"default_angle_eps"`
	DefaultCheckKawasaki    bool    `json:"default_check_kawasaki"`
	DefaultFullEstimation   bool    `json:"default_full_estimation"`
	DefaultMaxSolutions     int     `json:"default_max_solutions"`
	DefaultSearchStepBudget int     `json:"default_search_step_budget"`
	DefaultSearchTimeoutMs  int64   `json:"default_search_timeout_ms"`
	DefaultWorkers          int     `json:"default_workers"`

	// Application preferences
	DefaultPaperSize float64  `json:"default_paper_size"`
	RecentProjects   []string `json:"recent_projects"`
	LogLevel         string   `json:"log_level"` // "debug", "info", "warn", "error"
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultPointEps:         defaults.PointEps,
		DefaultAngleEps:         defaults.AngleEps,
		DefaultCheckKawasaki:    defaults.CheckKawasaki,
		DefaultFullEstimation:   defaults.FullEstimation,
		DefaultMaxSolutions:     defaults.MaxSolutions,
		DefaultSearchStepBudget: defaults.SearchStepBudget,
		DefaultSearchTimeoutMs:  defaults.SearchTimeoutMs,
		DefaultWorkers:          defaults.Workers,
		DefaultPaperSize:        400,
		RecentProjects:          []string{},
		LogLevel:                "warn",
	}
}

// ApplyToSettings copies the default values from AppConfig into a FoldSettings struct.
// This is used when creating a new project so it inherits the user's saved defaults.
func (c AppConfig) ApplyToSettings(s *FoldSettings) {
	s.PointEps = c.DefaultPointEps
	s.AngleEps = c.DefaultAngleEps
	s.CheckKawasaki = c.DefaultCheckKawasaki
	s.FullEstimation = c.DefaultFullEstimation
	s.MaxSolutions = c.DefaultMaxSolutions
	s.SearchStepBudget = c.DefaultSearchStepBudget
	s.SearchTimeoutMs = c.DefaultSearchTimeoutMs
	s.Workers = c.DefaultWorkers
}

// AddRecentProject moves path to the front of the recent list, keeping at most limit entries.
func (c *AppConfig) AddRecentProject(path string, limit int) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	c.RecentProjects = recent
}
