package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/workorder-sheet/internal/workorder"
)

const (
	// Mode constants
	ModeCLI   = "cli"
	ModeStdio = "stdio"

	// Default values
	DefaultVariant      = "fhc"
	DefaultLogLevel     = "info"
	DefaultMaxFileSize  = 100 * 1024 * 1024 // 100MB
	DefaultUnknownDates = string(workorder.UnknownLast)

	// Directory permissions
	DefaultDirPerm = 0o750

	envPrefix = "WO_SHEET"
)

// ErrVersionRequested is returned by LoadFromFlags when --version is given
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the work-order sheet tool
type Config struct {
	// Mode is "cli" for a one-shot batch or "stdio" for the MCP server
	Mode string

	// Directory every input and output path is confined to
	Directory string

	// Inputs are the PDF files or directories named on the command line
	Inputs []string
	// Output is the sheet to write; empty generates a name per run
	Output string

	Variant      string
	VariantsFile string
	UnknownDates string
	ColorSeed    int
	// ValidatePDFs runs a structural pdfcpu check before reading each document
	ValidatePDFs bool

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:         ModeCLI,
		Directory:    currentDir,
		Variant:      DefaultVariant,
		UnknownDates: DefaultUnknownDates,
		Version:      "1.0.0",
		ServerName:   "workorder-sheet",
		LogLevel:     DefaultLogLevel,
		MaxFileSize:  DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)
	cfg.Inputs = pflag.Args()

	// Expand paths if needed
	if cfg.Directory != "" {
		if expandedPath, err := filepath.Abs(cfg.Directory); err == nil {
			cfg.Directory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("dir", cfg.Directory)
	viper.SetDefault("output", cfg.Output)
	viper.SetDefault("variant", cfg.Variant)
	viper.SetDefault("variants-file", cfg.VariantsFile)
	viper.SetDefault("unknown-dates", cfg.UnknownDates)
	viper.SetDefault("color-seed", cfg.ColorSeed)
	viper.SetDefault("validate", cfg.ValidatePDFs)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'cli' for a one-shot extraction, 'stdio' for the MCP server")
	pflag.String("dir", cfg.Directory, "Directory holding the report PDFs and the generated sheets")
	pflag.StringP("output", "o", cfg.Output, "Spreadsheet to write (.xlsx); generated from the run id when empty")
	pflag.String("variant", cfg.Variant, "Report layout: fhc, fhc-pipe, project-phase or one from --variants-file")
	pflag.String("variants-file", cfg.VariantsFile, "YAML file with additional report layouts")
	pflag.String("unknown-dates", cfg.UnknownDates, "Where rows with unreadable dates go: 'first' or 'last'")
	pflag.Int("color-seed", cfg.ColorSeed, "Rotates the first row color of the palette")
	pflag.Bool("validate", cfg.ValidatePDFs, "Check each PDF's structure before reading it")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "dir", "output", "variant", "variants-file", "unknown-dates",
		"color-seed", "validate", "loglevel", "maxfilesize",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nworkorder-sheet - Extract work orders from PDF reports into a styled spreadsheet\n\n")
		fmt.Fprintf(os.Stderr, "  %s [options] [report.pdf | directory]...\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --dir=/srv/reports                        "+
			"# every PDF in the directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --variant=fhc-pipe -o march.xlsx a.pdf b.pdf\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=/srv/reports           # MCP server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nExit codes: 0 success, 1 error, 2 no valid data found\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  WO_SHEET_MODE           Run mode\n")
		fmt.Fprintf(os.Stderr, "  WO_SHEET_DIR            Report directory\n")
		fmt.Fprintf(os.Stderr, "  WO_SHEET_OUTPUT         Output sheet\n")
		fmt.Fprintf(os.Stderr, "  WO_SHEET_VARIANT        Report layout\n")
		fmt.Fprintf(os.Stderr, "  WO_SHEET_VARIANTS_FILE  Extra layouts file\n")
		fmt.Fprintf(os.Stderr, "  WO_SHEET_UNKNOWN_DATES  Unknown date placement\n")
		fmt.Fprintf(os.Stderr, "  WO_SHEET_COLOR_SEED     Palette rotation\n")
		fmt.Fprintf(os.Stderr, "  WO_SHEET_VALIDATE       Structural PDF check\n")
		fmt.Fprintf(os.Stderr, "  WO_SHEET_LOGLEVEL       Log level\n")
		fmt.Fprintf(os.Stderr, "  WO_SHEET_MAXFILESIZE    Maximum file size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Directory = viper.GetString("dir")
	cfg.Output = viper.GetString("output")
	cfg.Variant = viper.GetString("variant")
	cfg.VariantsFile = viper.GetString("variants-file")
	cfg.UnknownDates = viper.GetString("unknown-dates")
	cfg.ColorSeed = viper.GetInt("color-seed")
	cfg.ValidatePDFs = viper.GetBool("validate")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeCLI && c.Mode != ModeStdio {
		return errors.New("mode must be either 'cli' or 'stdio'")
	}

	if c.Directory == "" {
		return errors.New("report directory cannot be empty")
	}

	// Check if the directory exists, create if it doesn't
	if _, err := os.Stat(c.Directory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.Directory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create report directory %s: %w", c.Directory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access report directory %s: %w", c.Directory, err)
	}

	if c.Output != "" && !strings.EqualFold(filepath.Ext(c.Output), ".xlsx") {
		return fmt.Errorf("output must be an .xlsx file: %s", c.Output)
	}

	if c.Variant == "" {
		return errors.New("variant cannot be empty")
	}

	if c.VariantsFile != "" {
		if _, err := os.Stat(c.VariantsFile); err != nil {
			return fmt.Errorf("cannot access variants file %s: %w", c.VariantsFile, err)
		}
	}

	if _, err := workorder.ParseUnknownDatePolicy(c.UnknownDates); err != nil {
		return err
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// UnknownDatePolicy returns the parsed unknown-date placement
func (c *Config) UnknownDatePolicy() workorder.UnknownDatePolicy {
	p, err := workorder.ParseUnknownDatePolicy(c.UnknownDates)
	if err != nil {
		return workorder.UnknownLast
	}
	return p
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Directory: %s, Variant: %s, Output: %s, UnknownDates: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Directory, c.Variant, c.Output, c.UnknownDates, c.LogLevel, c.MaxFileSize)
}

// IsCLIMode returns true for a one-shot extraction run
func (c *Config) IsCLIMode() bool {
	return c.Mode == ModeCLI
}

// IsStdioMode returns true if the MCP server runs over standard I/O
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
