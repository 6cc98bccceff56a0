// Package manifest handles avm.toml runtime configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/chazu/avm2/vm"
)

// FileName is the name of the configuration file.
const FileName = "avm.toml"

// Manifest represents an avm.toml configuration.
type Manifest struct {
	Runtime Runtime `toml:"runtime"`
	Logging Logging `toml:"logging"`
	Bundles Bundles `toml:"bundles"`

	// Dir is the directory containing the avm.toml file (set at load time).
	Dir string `toml:"-"`
}

// Runtime configures the domain.
type Runtime struct {
	TraceExecution bool  `toml:"trace-execution"`
	Verify         *bool `toml:"verify"`
}

// Logging configures commonlog.
type Logging struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Bundles lists the metadata bundles to load. Paths may be glob patterns.
type Bundles struct {
	Paths []string `toml:"paths"`
}

// Load parses an avm.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses the configuration file at path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	// Defaults
	if m.Runtime.Verify == nil {
		verify := true
		m.Runtime.Verify = &verify
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find an avm.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// BundlePaths returns absolute paths for the configured bundles, with glob
// patterns expanded. A pattern matching nothing is an error.
func (m *Manifest) BundlePaths() ([]string, error) {
	var paths []string
	for _, p := range m.Bundles.Paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(m.Dir, p)
		}
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad bundle pattern %s: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no bundle matches %s", p)
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}
	return paths, nil
}

// LogFile returns the absolute log file path, or "" for stderr.
func (m *Manifest) LogFile() string {
	if m.Logging.File == "" || filepath.IsAbs(m.Logging.File) {
		return m.Logging.File
	}
	return filepath.Join(m.Dir, m.Logging.File)
}

// Options converts the runtime section to domain options.
func (m *Manifest) Options() vm.Options {
	verify := true
	if m.Runtime.Verify != nil {
		verify = *m.Runtime.Verify
	}
	return vm.Options{
		TraceExecution: m.Runtime.TraceExecution,
		Verify:         verify,
	}
}
