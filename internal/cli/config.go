package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/toyz/argcall/internal/errors"
	"github.com/toyz/argcall/internal/parser"
)

// DefaultConfigFile is read from the working directory when no -config flag is given
const DefaultConfigFile = "argcall.yaml"

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories to scan; a trailing /... scans recursively
	Directories []string `yaml:"directories"`

	// OutputFile is the name of the generated file in every package
	OutputFile string `yaml:"output_file"`

	// TypeCheck loads packages with full type information before generating
	TypeCheck bool `yaml:"typecheck"`

	// Workers bounds how many packages are processed at once
	Workers int `yaml:"workers"`

	// SkipDirs lists directory paths or name globs (doublestar syntax) never scanned
	SkipDirs []string `yaml:"skip_dirs"`

	// Check reports stale generated files instead of writing them
	Check bool `yaml:"-"`

	// Verbose enables detailed logging and error reporting
	Verbose bool `yaml:"-"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Directories: []string{"."},
		OutputFile:  parser.DefaultOutputFile,
		TypeCheck:   true,
		Workers:     runtime.GOMAXPROCS(0),
	}
}

// LoadConfig reads a YAML configuration on top of the defaults. A missing
// file is only an error when required is set.
func LoadConfig(path string, required bool) (Config, error) {
	config := DefaultConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return config, nil
		}
		return config, errors.WrapConfigurationError(path, "read", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && err != io.EOF {
		return config, errors.WrapConfigurationError(path, "parse", err).
			WithSuggestion("known keys are directories, output_file, typecheck, workers and skip_dirs")
	}

	return config, config.Validate()
}

// Validate checks the configuration for values the generator cannot use
func (c *Config) Validate() error {
	if len(c.Directories) == 0 {
		return errors.New(errors.ConfigurationErrorCode, "no directories to scan")
	}
	if c.OutputFile == "" {
		return errors.New(errors.ConfigurationErrorCode, "output_file cannot be empty")
	}
	if strings.ContainsAny(c.OutputFile, `/\`) || !strings.HasSuffix(c.OutputFile, ".go") {
		return errors.New(errors.ConfigurationErrorCode,
			fmt.Sprintf("output_file %q must be a plain .go file name", c.OutputFile))
	}
	if strings.HasSuffix(c.OutputFile, "_test.go") {
		return errors.New(errors.ConfigurationErrorCode,
			fmt.Sprintf("output_file %q cannot be a test file", c.OutputFile))
	}
	for _, pattern := range c.SkipDirs {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return errors.New(errors.ConfigurationErrorCode,
				fmt.Sprintf("skip_dirs entry %q is not a valid pattern", pattern))
		}
	}
	if c.Workers < 1 {
		return errors.New(errors.ConfigurationErrorCode,
			fmt.Sprintf("workers must be at least 1, got %d", c.Workers))
	}
	return nil
}
