// Package confkit holds the small pieces shared by every config loader: .env
// loading, path resolution against the main config file and sub-config sections.
package confkit

import (
	"os"
	"path/filepath"
)

// ResolvePath expands environment variables in file and, when the result is
// relative, joins it onto base.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) || base == "" {
		return file
	}
	return filepath.Join(base, file)
}

// Section is a config block that lives in its own file. After Hydrate, File
// holds the resolved path and Value the parsed contents.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Configured reports whether the section points at a file or was set inline.
func (s Section[T]) Configured() bool {
	return s.File != "" || s.Value != nil
}

// Hydrate resolves File against base and parses it with loader. An empty File
// leaves the section untouched.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	p := ResolvePath(base, s.File)
	v, err := loader(p)
	if err != nil {
		return err
	}
	s.File, s.Value = p, v
	return nil
}
