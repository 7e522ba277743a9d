// Package config handles minijvm.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name FindAndLoad looks for.
const FileName = "minijvm.toml"

// DefaultMaxFrameDepth matches the VM's default call depth limit.
const DefaultMaxFrameDepth = 1024

// Config represents a minijvm.toml file.
type Config struct {
	Classpath Classpath `toml:"classpath"`
	Log       Log       `toml:"log"`
	VM        VM        `toml:"vm"`

	// Dir is the directory containing the file (set at load time).
	Dir string `toml:"-"`
}

// Classpath configures where classes are loaded from.
type Classpath struct {
	Dirs []string `toml:"dirs"`
	Jmod string   `toml:"jmod"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// VM configures the runtime.
type VM struct {
	MaxFrameDepth int `toml:"max_frame_depth"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{VM: VM{MaxFrameDepth: DefaultMaxFrameDepth}}
}

// Load parses the configuration file at path. Relative class path entries
// are resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	for i, d := range c.Classpath.Dirs {
		c.Classpath.Dirs[i] = c.resolve(d)
	}
	if c.Classpath.Jmod != "" {
		c.Classpath.Jmod = c.resolve(c.Classpath.Jmod)
	}
	if c.Log.File != "" {
		c.Log.File = c.resolve(c.Log.File)
	}
	if c.VM.MaxFrameDepth <= 0 {
		return nil, fmt.Errorf("%s: vm.max_frame_depth must be positive, got %d", path, c.VM.MaxFrameDepth)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a minijvm.toml file and loads
// it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}
