package local

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// Search walks the whole tree under the root and returns the relative
// paths of files matching a gitignore-style pattern ("**" supported).
// Results are sorted for stable output.
func (a *Adapter) Search(pattern string) ([]string, error) {
	var (
		mu      sync.Mutex
		matches []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, a.root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(a.root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if ok, matchErr := doublestar.Match(pattern, rel); matchErr == nil && ok {
			mu.Lock()
			matches = append(matches, rel)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(matches)
	return matches, nil
}
