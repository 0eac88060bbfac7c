package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPathManager implements path management functionality
type DefaultPathManager struct{}

func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// OutputPath names a report file dca_<variant>_<position>_<timestamp>.<ext>
// under dir
func (p *DefaultPathManager) OutputPath(dir string, rep Report, format Format) string {
	if strings.TrimSpace(dir) == "" {
		dir = "results"
	}

	variant, position := "unknown", "unknown"
	if rep.Result != nil {
		variant = strings.ToLower(string(rep.Result.Variant))
		position = strings.ToLower(rep.Result.PositionType.String())
	}

	stamp := rep.GeneratedAt.UTC().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("dca_%s_%s_%s.%s", variant, position, stamp, format.Extension()))
}

// EnsureDirectoryExists creates the parent directory of path
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

func DefaultOutputPath(dir string, rep Report, format Format) string {
	return NewDefaultPathManager().OutputPath(dir, rep, format)
}
