// ABOUTME: Environment variable and home expansion in config path fields
// ABOUTME: Replaces ${VAR} patterns with os.Getenv values; unset vars become empty

package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// ResolveEnvVars expands ${VAR} patterns and a leading ~ in path fields of Settings.
func ResolveEnvVars(s *Settings) {
	for _, p := range []*string{
		&s.DataDir,
		&s.HistoryPath,
		&s.ActionsDir,
		&s.Storage.SuggestionsPath,
		&s.Storage.BehaviorPath,
		&s.Storage.DBPath,
		&s.Storage.JournalPath,
	} {
		*p = expandHome(expandEnv(*p))
	}
	s.ProjectKeyword = expandEnv(s.ProjectKeyword)
}

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// expandHome rewrites "~" and "~/..." against the user's home directory.
func expandHome(s string) string {
	if s != "~" && !strings.HasPrefix(s, "~/") {
		return s
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return s
	}
	return filepath.Join(home, strings.TrimPrefix(s, "~"))
}
