package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	reflection "github.com/wippyai/swift-reflection"
)

const configFileName = "swift-reflection.toml"

// fileConfig is the on-disk configuration.
type fileConfig struct {
	Builder struct {
		Intern      bool   `toml:"intern"`
		PointerSize uint32 `toml:"pointer_size"`
	} `toml:"builder"`
	Dump struct {
		Color         string   `toml:"color"`
		PrintTypeName bool     `toml:"print_type_name"`
		Images        []string `toml:"images"`
	} `toml:"dump"`
}

// settings is the effective configuration: file values overridden by flags.
type settings struct {
	Builder       reflection.Config
	Color         string
	PrintTypeName bool
	Verbose       bool
	Images        []string
}

// active is filled by setup before any command runs.
var active settings

// findConfig walks up from startDir to locate the configuration file.
func findConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// readConfig parses path. Relative image paths are resolved against the
// directory holding the file.
func readConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fileConfig{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if cfg.Builder.PointerSize != 0 && cfg.Builder.PointerSize != 4 && cfg.Builder.PointerSize != 8 {
		return fileConfig{}, fmt.Errorf("%s: pointer_size must be 4 or 8, got %d", path, cfg.Builder.PointerSize)
	}
	base := filepath.Dir(path)
	for i, img := range cfg.Dump.Images {
		if !filepath.IsAbs(img) {
			cfg.Dump.Images[i] = filepath.Join(base, img)
		}
	}
	return cfg, nil
}

// loadSettings merges the configuration file with the command's flags.
func loadSettings(cmd *cobra.Command) (settings, error) {
	flags := cmd.Root().PersistentFlags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return settings{}, fmt.Errorf("failed to get config flag: %w", err)
	}

	var file fileConfig
	if configPath == "" {
		found, ok, err := findConfig(".")
		if err != nil {
			return settings{}, err
		}
		if ok {
			configPath = found
		}
	}
	if configPath != "" {
		if file, err = readConfig(configPath); err != nil {
			return settings{}, err
		}
	}

	s := settings{
		Builder: reflection.Config{
			InternTypeRefs: file.Builder.Intern,
			PointerSize:    file.Builder.PointerSize,
		},
		Color:         file.Dump.Color,
		PrintTypeName: file.Dump.PrintTypeName,
		Images:        file.Dump.Images,
	}
	if s.Color == "" || flags.Changed("color") {
		if s.Color, err = flags.GetString("color"); err != nil {
			return settings{}, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if s.Verbose, err = flags.GetBool("verbose"); err != nil {
		return settings{}, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	return s, nil
}

// imagesOrDefault returns args, or the configured images when none are given.
func (s settings) imagesOrDefault(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(s.Images) > 0 {
		return s.Images, nil
	}
	return nil, fmt.Errorf("no images given and none configured in %s", configFileName)
}
