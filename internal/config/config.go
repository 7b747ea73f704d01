// ABOUTME: Settings loading with defaults, global + project YAML overlay, and explicit files
// ABOUTME: Non-zero project values override global ones; derived paths come from DataDir

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Defaults applied to fields left unset in every config file.
const (
	DefaultSchedule       = "@every 2s"
	DefaultDedupWindow    = 5 * time.Second
	DefaultGlobalFloor    = 0.3
	DefaultProjectKeyword = "llama-cpp-python"
	DefaultMaxEvents      = 1000
	DefaultRebuildEvery   = 10
	DefaultFlushEvery     = 10
	DefaultLogLevel       = "info"
)

// StorageSettings selects and tunes the persistence backend.
type StorageSettings struct {
	Backend         string `yaml:"backend,omitempty"`
	SuggestionsPath string `yaml:"suggestions_path,omitempty"`
	BehaviorPath    string `yaml:"behavior_path,omitempty"`
	DBPath          string `yaml:"db_path,omitempty"`
	JournalPath     string `yaml:"journal_path,omitempty"`
	FlushEvery      int    `yaml:"flush_every,omitempty"`
	MaxSuggestions  int    `yaml:"max_suggestions,omitempty"`
}

// Settings holds the merged configuration.
type Settings struct {
	DataDir        string            `yaml:"data_dir,omitempty"`
	HistoryPath    string            `yaml:"history_path,omitempty"`
	ActionsDir     string            `yaml:"actions_dir,omitempty"`
	Schedule       string            `yaml:"schedule,omitempty"`
	Watch          bool              `yaml:"watch,omitempty"`
	AutoExecute    bool              `yaml:"auto_execute,omitempty"`
	DedupWindow    time.Duration     `yaml:"dedup_window,omitempty"`
	GlobalFloor    float64           `yaml:"global_floor,omitempty"`
	ProjectKeyword string            `yaml:"project_keyword,omitempty"`
	MaxEvents      int               `yaml:"max_events,omitempty"`
	RebuildEvery   int               `yaml:"rebuild_every,omitempty"`
	Labels         map[string]string `yaml:"labels,omitempty"`
	LogLevel       string            `yaml:"log_level,omitempty"`
	Storage        StorageSettings   `yaml:"storage,omitempty"`
}

// Defaults returns settings with every field populated.
func Defaults() *Settings {
	s := &Settings{DataDir: DataDir()}
	s.applyDefaults()
	return s
}

// Load reads and merges global and project-local settings over the defaults.
// Project settings override global settings.
func Load(projectRoot string) (*Settings, error) {
	global, err := loadFile(GlobalConfigFile())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	project, err := loadFile(ProjectConfigFile(projectRoot))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return finish(merge(global, project)), nil
}

// LoadFile reads a single explicit config file over the defaults. Unlike
// Load, a missing file is an error.
func LoadFile(path string) (*Settings, error) {
	s, err := loadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return finish(s), nil
}

func finish(s *Settings) *Settings {
	ResolveEnvVars(s)
	if s.DataDir == "" {
		s.DataDir = DataDir()
	}
	s.applyDefaults()
	return s
}

// loadFile reads Settings from a YAML file. Returns zero Settings if the
// file does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// applyDefaults fills unset fields. Paths derive from DataDir using the
// capture tool's layout: Clipboard/ for history, Clipboard_Concierge/ for
// everything this tool writes.
func (s *Settings) applyDefaults() {
	clip := filepath.Join(s.DataDir, "Clipboard")
	own := filepath.Join(s.DataDir, "Clipboard_Concierge")

	if s.HistoryPath == "" {
		s.HistoryPath = filepath.Join(clip, "metadata.json")
	}
	if s.ActionsDir == "" {
		s.ActionsDir = own
	}
	if s.Schedule == "" {
		s.Schedule = DefaultSchedule
	}
	if s.DedupWindow == 0 {
		s.DedupWindow = DefaultDedupWindow
	}
	if s.GlobalFloor == 0 {
		s.GlobalFloor = DefaultGlobalFloor
	}
	if s.ProjectKeyword == "" {
		s.ProjectKeyword = DefaultProjectKeyword
	}
	if s.MaxEvents == 0 {
		s.MaxEvents = DefaultMaxEvents
	}
	if s.RebuildEvery == 0 {
		s.RebuildEvery = DefaultRebuildEvery
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}

	st := &s.Storage
	if st.Backend == "" {
		st.Backend = BackendJSON
	}
	if st.SuggestionsPath == "" {
		st.SuggestionsPath = filepath.Join(own, "personalized_suggestions.json")
	}
	if st.BehaviorPath == "" {
		st.BehaviorPath = filepath.Join(own, "behavior.json")
	}
	if st.DBPath == "" {
		st.DBPath = filepath.Join(own, "concierge.db")
	}
	if st.JournalPath == "" {
		st.JournalPath = filepath.Join(own, "dispatch.jsonl")
	}
	if st.FlushEvery == 0 {
		st.FlushEvery = DefaultFlushEvery
	}
}

// Validate reports settings that cannot be used as given.
func (s *Settings) Validate() error {
	var errs []error
	switch s.Storage.Backend {
	case BackendJSON, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", s.Storage.Backend))
	}
	if s.GlobalFloor < 0 || s.GlobalFloor > 1 {
		errs = append(errs, fmt.Errorf("global_floor: %.2f outside [0,1]", s.GlobalFloor))
	}
	if s.DedupWindow < 0 {
		errs = append(errs, fmt.Errorf("dedup_window: negative duration %s", s.DedupWindow))
	}
	if s.MaxEvents < 0 || s.RebuildEvery < 0 || s.Storage.FlushEvery < 0 || s.Storage.MaxSuggestions < 0 {
		errs = append(errs, errors.New("counts must not be negative"))
	}
	return errors.Join(errs...)
}

// merge deep-merges project settings onto global settings.
// Non-zero project values override global values.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global

	overrideString(&result.DataDir, project.DataDir)
	overrideString(&result.HistoryPath, project.HistoryPath)
	overrideString(&result.ActionsDir, project.ActionsDir)
	overrideString(&result.Schedule, project.Schedule)
	overrideString(&result.ProjectKeyword, project.ProjectKeyword)
	overrideString(&result.LogLevel, project.LogLevel)
	if project.Watch {
		result.Watch = true
	}
	if project.AutoExecute {
		result.AutoExecute = true
	}
	if project.DedupWindow != 0 {
		result.DedupWindow = project.DedupWindow
	}
	if project.GlobalFloor != 0 {
		result.GlobalFloor = project.GlobalFloor
	}
	if project.MaxEvents != 0 {
		result.MaxEvents = project.MaxEvents
	}
	if project.RebuildEvery != 0 {
		result.RebuildEvery = project.RebuildEvery
	}

	st, pst := &result.Storage, project.Storage
	overrideString(&st.Backend, pst.Backend)
	overrideString(&st.SuggestionsPath, pst.SuggestionsPath)
	overrideString(&st.BehaviorPath, pst.BehaviorPath)
	overrideString(&st.DBPath, pst.DBPath)
	overrideString(&st.JournalPath, pst.JournalPath)
	if pst.FlushEvery != 0 {
		st.FlushEvery = pst.FlushEvery
	}
	if pst.MaxSuggestions != 0 {
		st.MaxSuggestions = pst.MaxSuggestions
	}

	// Merge label maps
	if len(project.Labels) > 0 {
		labels := make(map[string]string, len(global.Labels)+len(project.Labels))
		for k, v := range global.Labels {
			labels[k] = v
		}
		for k, v := range project.Labels {
			labels[k] = v
		}
		result.Labels = labels
	}

	return &result
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
