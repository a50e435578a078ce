// =============================================================================
// CPS Positions - Output File Manager
// =============================================================================
//
// This module places the files the CLI produces (CSV and XLSX exports, chart
// JSON, PNG facets) in the output directory under generated names.
//
// NAMING:
//   - Names come from the export_filename_format template
//   - {uuid}, {timestamp}, {date} and {time} are filled in automatically
//   - Any other {key} is filled from the caller's params
//
// Files are written to a temporary name first and renamed into place, so a
// failed render never leaves a partial file behind.
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// OUTPUT MANAGER
// =============================================================================

// OutputManager writes generated files into one directory.
type OutputManager struct {
	// Dir is the directory files are written to.
	Dir string

	// NameFormat is the file name template, without extension.
	NameFormat string

	// now is replaceable in tests.
	now func() time.Time
}

// NewOutputManager creates an OutputManager for dir.
func NewOutputManager(dir, nameFormat string) *OutputManager {
	return &OutputManager{Dir: dir, NameFormat: nameFormat, now: time.Now}
}

// EnsureDirectories creates every directory in dirs if it doesn't exist.
func EnsureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Write renders one file through fn and returns its final path.
//
// PARAMETERS:
//   - ext: The file extension including the dot, e.g. ".csv".
//   - params: Placeholder values such as {"kind": "positions"}.
//   - fn: Writes the file content.
//
// RETURNS:
//   - The path of the written file.
//   - An error if the directory cannot be created or fn fails.
func (m *OutputManager) Write(ext string, params map[string]string, fn func(io.Writer) error) (string, error) {
	if err := EnsureDirectories(m.Dir); err != nil {
		return "", err
	}

	name := GenerateOutputFileName(m.NameFormat, ext, params, m.now())
	path := filepath.Join(m.Dir, name)

	tmp, err := os.CreateTemp(m.Dir, ".tmp-"+name+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to set permissions on %s: %w", name, err)
	}
	if err := fn(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move %s into place: %w", name, err)
	}

	return path, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName fills the placeholders of format and appends ext
// unless the result already ends with it.
//
// EXAMPLE:
//
//	format: "{kind}_{timestamp}"
//	params: {"kind": "positions"}
//	output: "positions_20240115_143022.csv"
func GenerateOutputFileName(format, ext string, params map[string]string, now time.Time) string {
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = sanitizeName(value)
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// sanitizeName keeps user-supplied values from escaping the output directory.
func sanitizeName(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, value)
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
