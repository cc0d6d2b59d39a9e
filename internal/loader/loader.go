// Package loader reads manifest documents from YAML and JSON files
package loader

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/contractkit/protokit-go/internal/domain"
)

// Entry is one loaded manifest together with the file it came from
type Entry struct {
	Path     string
	Manifest domain.Manifest
}

// Loader loads manifest files
type Loader struct{}

// NewLoader creates a new manifest loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses a manifest file from the given path
func (l *Loader) Load(path string) (domain.Manifest, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	return l.LoadFromBytes(data, filepath.Ext(path))
}

// LoadFromBytes parses a manifest document from raw bytes. The extension
// selects the codec; the document root must be a mapping.
func (l *Loader) LoadFromBytes(data []byte, ext string) (domain.Manifest, error) {
	ext = strings.ToLower(ext)

	var doc any
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedExt, ext)
	}

	m, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", domain.ErrNotMapping, doc)
	}
	return m, nil
}

// LoadDir loads every manifest file under dir, recursively, in sorted path
// order. Files with other extensions are skipped.
func (l *Loader) LoadDir(dir string) ([]Entry, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if isManifestFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		m, err := l.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		entries = append(entries, Entry{Path: path, Manifest: m})
	}
	return entries, nil
}

// LoadPaths expands a mixed list of files and directories into loaded
// entries. Directories are walked recursively; explicit files must load.
func (l *Loader) LoadPaths(paths []string) ([]Entry, error) {
	var entries []Entry
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, path)
		}
		if info.IsDir() {
			sub, err := l.LoadDir(path)
			if err != nil {
				return nil, err
			}
			entries = append(entries, sub...)
			continue
		}
		m, err := l.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		entries = append(entries, Entry{Path: path, Manifest: m})
	}
	return entries, nil
}

func isManifestFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}
