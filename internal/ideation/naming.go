package ideation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// nameIndex tracks which filenames are taken in an output directory.
// Names compare case-insensitively so a run behaves the same on
// case-insensitive filesystems.
type nameIndex struct {
	dir   string
	taken map[string]struct{}
}

// newNameIndex snapshots the names already present in dir.
func newNameIndex(dir string) (*nameIndex, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list output directory: %w", err)
	}
	idx := &nameIndex{dir: dir, taken: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		idx.mark(e.Name())
	}
	return idx, nil
}

func (n *nameIndex) mark(name string) {
	n.taken[strings.ToLower(name)] = struct{}{}
}

func (n *nameIndex) isTaken(name string) bool {
	_, ok := n.taken[strings.ToLower(name)]
	return ok
}

// candidate returns the k-th filename tried for stem: stem.md, stem_1.md, ...
func candidate(stem string, k int) string {
	if k == 0 {
		return stem + ".md"
	}
	return fmt.Sprintf("%s_%d.md", stem, k)
}

// resolve returns the first free filename for stem without touching disk
// beyond the initial snapshot.
func (n *nameIndex) resolve(stem string) string {
	for k := 0; ; k++ {
		if name := candidate(stem, k); !n.isTaken(name) {
			return name
		}
	}
}

// create writes content to the first free filename for stem and returns
// the name and full path. Files are created exclusively; a name grabbed
// by someone else since the snapshot is skipped.
func (n *nameIndex) create(stem string, content []byte) (string, string, error) {
	for {
		name := n.resolve(stem)
		path := filepath.Join(n.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			n.mark(name)
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("create %s: %w", path, err)
		}
		n.mark(name)

		if _, err := f.Write(content); err != nil {
			_ = f.Close()
			return "", "", fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", "", fmt.Errorf("close %s: %w", path, err)
		}
		return name, path, nil
	}
}
