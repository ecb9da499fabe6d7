package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Loader defines a dataset loader implementation.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt LoadOptions) (*Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates a file format no loader handles.
var ErrUnsupported = errors.New("unsupported dataset format")

// CanLoad reports whether any registered loader accepts the file name.
func CanLoad(path string) bool {
	return loaderFor(path) != nil
}

// Load selects a loader based on the file name and reads the dataset.
func Load(path string, opt LoadOptions) (*Dataset, error) {
	l := loaderFor(path)
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Ext(path))
	}
	ds, err := l.Load(path, opt)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return ds, nil
}

// ListFiles returns the sorted names of loadable files directly inside dir.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read datasets dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if CanLoad(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func loaderFor(path string) Loader {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l
		}
	}
	return nil
}

func init() {
	// Register default loaders
	Register(csvLoader{})
	Register(xlsxLoader{})
}
