// Package configutil loads JSON5 configuration files with local overrides.
package configutil

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// LocalName returns the override file name for name: "fanscope.json5"
// becomes "fanscope.local.json5".
func LocalName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// ReadConfig reads name and merges LocalName(name) over it, with fields set
// in the local file taking priority. It returns fs.ErrNotExist if neither
// file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	found := false

	base, err := readFile[T](name)
	switch {
	case err == nil:
		out = base
		found = true
	case !errors.Is(err, fs.ErrNotExist):
		return out, err
	}

	local := LocalName(name)
	override, err := readFile[T](local)
	switch {
	case err == nil:
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, fmt.Errorf("merge %s: %w", local, err)
		}
		slog.Debug("merged config with local overrides", "local", local)
		found = true
	case !errors.Is(err, fs.ErrNotExist):
		return out, err
	}

	if !found {
		return out, fs.ErrNotExist
	}
	return out, nil
}

// ReadRecursively looks for name in the working directory and each parent
// up to the filesystem root, returning the first config found.
func ReadRecursively[T any](name string) (T, error) {
	var zero T
	dir, err := os.Getwd()
	if err != nil {
		return zero, err
	}
	for {
		cfg, err := ReadConfig[T](filepath.Join(dir, name))
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return zero, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return zero, fs.ErrNotExist
		}
		dir = parent
	}
}

func readFile[T any](path string) (T, error) {
	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, nil
	}
	if err := json5.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}
