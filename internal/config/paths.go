// ABOUTME: Standard filesystem paths for concierge configuration and data
// ABOUTME: Resolves ~/.concierge/ for global and .concierge/ for project-local paths

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".concierge"
	projectDirName = ".concierge"
	configFileName = "config.yaml"

	// dataDirEnv overrides the default data root shared with the capture tool.
	dataDirEnv = "CONCIERGE_DATA_DIR"
)

// GlobalDir returns the user-global config directory (~/.concierge/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.concierge/ in root).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), configFileName)
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), configFileName)
}

// DataDir returns the data root holding Clipboard/ and Clipboard_Concierge/.
// $CONCIERGE_DATA_DIR wins; otherwise ~/.concierge/data.
func DataDir() string {
	if d := os.Getenv(dataDirEnv); d != "" {
		return d
	}
	return filepath.Join(GlobalDir(), "data")
}

// EnsureDir creates a directory and all parents if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}
