package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves the application's working directories. All relative
// paths are anchored at the base directory so the server behaves the same
// regardless of where it is launched from.
type Paths struct {
	BaseDir    string
	DataDir    string
	ExportsDir string
	LogsDir    string
}

// NewPaths builds a Paths from configuration, anchoring relative
// directories at base.
func NewPaths(base string, cfg PathsConfig) *Paths {
	return &Paths{
		BaseDir:    base,
		DataDir:    resolve(base, cfg.DataDir),
		ExportsDir: resolve(base, cfg.ExportsDir),
		LogsDir:    resolve(base, cfg.LogsDir),
	}
}

// GetDataPath returns the full path of a file under the data directory.
func (p *Paths) GetDataPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.DataDir, filename)
}

// GetExportPath returns the full path of a file under the exports
// directory.
func (p *Paths) GetExportPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.ExportsDir, filename)
}

// GetLogPath returns the full path of a file under the logs directory.
func (p *Paths) GetLogPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.LogsDir, filename)
}

// EnsureDirectories creates the working directories if they do not exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ExportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func resolve(base, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}
