package build

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ListProfiles returns the names of all profiles under dir, including ones
// in subdirectories ("team/fast"), sorted. A missing dir has no profiles.
func ListProfiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.toml", doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(m, ".toml"))
	}
	sort.Strings(names)
	return names, nil
}
