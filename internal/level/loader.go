package level

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed levels/*.yaml
var embeddedFS embed.FS

// Loader handles loading levels from a directory.
type Loader struct {
	fsys fs.FS
	Root string
}

// NewLoader creates a loader over a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{fsys: os.DirFS(root), Root: root}
}

// Embedded returns a loader over the levels compiled into the binary.
func Embedded() *Loader {
	sub, err := fs.Sub(embeddedFS, "levels")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return &Loader{fsys: sub, Root: "embedded"}
}

// LoadAll recursively scans and loads all level files.
// Returns levels sorted by ID for deterministic ordering.
func (l *Loader) LoadAll() ([]Level, error) {
	var levels []Level

	err := fs.WalkDir(l.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		level, err := l.LoadFile(path)
		if err != nil {
			// Skip invalid files
			return nil
		}

		levels = append(levels, level)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", l.Root, err)
	}

	sort.Slice(levels, func(i, j int) bool {
		return levels[i].ID < levels[j].ID
	})
	return levels, nil
}

// LoadFile loads a single level file, relative to the loader root.
func (l *Loader) LoadFile(path string) (Level, error) {
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return Level{}, fmt.Errorf("reading file %s: %w", path, err)
	}
	lvl, err := Parse(data)
	if err != nil {
		return Level{}, fmt.Errorf("parsing file %s: %w", path, err)
	}
	lvl.FilePath = filepath.Join(l.Root, path)
	return lvl, nil
}

// LoadByID loads a specific level by ID.
func (l *Loader) LoadByID(id string) (Level, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return Level{}, err
	}
	for _, lvl := range levels {
		if lvl.ID == id {
			return lvl, nil
		}
	}
	return Level{}, fmt.Errorf("%w: %s", ErrLevelNotFound, id)
}

// ListIDs returns all level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	levels, err := l.LoadAll()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(levels))
	for i, lvl := range levels {
		ids[i] = lvl.ID
	}
	return ids, nil
}

// Parse decodes a YAML level. Mode defaults to singleplayer.
func Parse(data []byte) (Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if lvl.ID == "" {
		return Level{}, fmt.Errorf("level: missing id")
	}
	if lvl.Mode == "" {
		lvl.Mode = ModeSingleplayer
	}
	return lvl, nil
}

// ByID finds a level in the embedded set.
func ByID(id string) (Level, error) {
	return Embedded().LoadByID(id)
}
