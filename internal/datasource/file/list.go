package file

import (
	"os"
	"path/filepath"
	"strings"
)

// CSVExt is the extension (case-insensitive) of listing exports.
const CSVExt = ".csv"

// ListCSV returns the paths of regular files directly under dir whose
// extension is CSVExt, sorted by name (os.ReadDir order). Subdirectories are not descended.
func ListCSV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(e.Name()), CSVExt) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}
