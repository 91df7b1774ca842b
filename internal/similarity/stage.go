package similarity

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/cutekitek/rankode-jplag/internal/repository/dto"
)

const solutionName = "solution"

// Stage writes the first submission of every author into
// dir/<sanitized author>/solution.<ext> and returns the set of staged authors.
//
// Distinct authors whose names sanitize to the same token get numbered
// directories (name, name-2, name-3, ...) in order of first appearance.
func Stage(dir string, submissions []dto.Submission, ext string) (map[string]struct{}, error) {
	authors := make(map[string]struct{}, len(submissions))
	used := make(map[string]struct{}, len(submissions))

	for _, sub := range submissions {
		if _, ok := authors[sub.Author]; ok {
			continue
		}
		authors[sub.Author] = struct{}{}

		name := uniqueName(SanitizeName(sub.Author), used)
		used[name] = struct{}{}

		authorDir := filepath.Join(dir, name)
		if err := os.MkdirAll(authorDir, 0o755); err != nil {
			return nil, &StagingIOError{Path: authorDir, Err: err}
		}
		path := filepath.Join(authorDir, solutionName+"."+ext)
		if err := os.WriteFile(path, sub.Source, 0o644); err != nil {
			return nil, &StagingIOError{Path: path, Err: err}
		}
	}

	return authors, nil
}

func uniqueName(name string, used map[string]struct{}) string {
	if _, taken := used[name]; !taken {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + "-" + strconv.Itoa(i)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}
