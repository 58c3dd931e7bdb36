package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vidredact/domain/model"
)

// DefaultExtensions is the default file discovery filter.
var DefaultExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".flv", ".webm", ".ts"}

// Discover returns the files directly inside inputDir whose extension
// matches the accepted set (case-insensitive, dot-prefixed). Subdirectories
// are not entered. Results are sorted by name so processing order is
// deterministic within a run.
func Discover(inputDir string, extensions []string) ([]model.VideoFile, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("input directory not found: %s", inputDir)
		}
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	accepted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		accepted[strings.ToLower(strings.TrimSpace(ext))] = true
	}

	var files []model.VideoFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		file := model.NewVideoFile(filepath.Join(inputDir, entry.Name()))
		if accepted[file.Ext] {
			files = append(files, file)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
