// Package config merges defaults, configuration file, profile, environment
// and command-line flags into converter.Options.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stackvity/tabs2spaces/pkg/converter"
)

const (
	EnvPrefix         = "TABS2SPACES"
	DefaultConfigName = "tabs2spaces"
)

// flagKeys maps flag names to the configuration keys they override.
// Flags that need special handling (lf, crlf, notrim, norec) are not listed.
var flagKeys = map[string]string{
	"width":         "width",
	"trim":          "trim",
	"rec":           "recursive",
	"concurrency":   "concurrency",
	"check":         "check",
	"exclude":       "exclude",
	"skip-binary":   "skipBinary",
	"skip-vendor":   "skipVendor",
	"git-tracked":   "gitTracked",
	"output-format": "outputFormat",
	"tui":           "tui",
	"verbose":       "verbose",
}

// RegisterFlags defines every flag LoadAndValidate reads on flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Configuration file path (default: search ., $HOME/.config/tabs2spaces/, $HOME/.tabs2spaces/)")
	flags.String("profile", "", "Name of configuration profile to use")
	flags.BoolP("verbose", "v", converter.DefaultVerbose, "Enable verbose (debug) logging output (disables TUI)")

	flags.IntP("width", "w", converter.DefaultTabWidth, "Tab stop width in columns")
	flags.Bool("lf", false, "Convert CRLF line endings to LF")
	flags.Bool("crlf", false, "Convert LF line endings to CRLF")
	flags.Bool("trim", converter.DefaultTrim, "Remove trailing spaces and tabs")
	flags.Bool("notrim", false, "Keep trailing whitespace (overrides --trim and configuration)")
	flags.Bool("rec", converter.DefaultRecursive, "Match wildcard arguments in subdirectories too")
	flags.Bool("norec", false, "Match wildcard arguments in the named directory only")

	flags.Bool("check", converter.DefaultCheckOnly, "Report files that would change without writing them")
	flags.StringArray("exclude", []string{}, "Glob pattern of files or directories to leave alone (repeatable)")
	flags.Bool("skip-binary", converter.DefaultSkipBinary, "Skip files whose content looks binary")
	flags.Bool("skip-vendor", converter.DefaultSkipVendor, "Skip vendored and third-party paths")
	flags.Bool("git-tracked", converter.DefaultGitTracked, "Only rewrite files tracked in the git index")
	flags.Int("concurrency", converter.DefaultConcurrency, "Files converted in parallel per argument (0 for CPU count)")
	flags.String("output-format", string(converter.DefaultOutputFormat), `Final report format ("text", "json", "none")`)
	flags.Bool("tui", converter.DefaultTuiEnabled, "Show an interactive progress view when stderr is a terminal")
}

// LoadAndValidate loads configuration from all sources (defaults, file,
// profile, env, flags), validates the result and builds the logger whose
// handler is injected into Options. Log records are written to logOut.
func LoadAndValidate(appVersion string, flags *pflag.FlagSet, logOut io.Writer) (converter.Options, *slog.Logger, error) {
	opts := converter.DefaultOptions()
	v := viper.New()

	// Temporary logger for errors found before the level is known.
	tempLogger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelInfo}))

	setDefaults(v)

	cfgFile, _ := flags.GetString("config")
	profileName, _ := flags.GetString("profile")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
			v.AddConfigPath(filepath.Join(home, "."+DefaultConfigName))
		} else {
			tempLogger.Debug("Home directory unavailable, searching the working directory only", slog.Any("error", err))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags")
		} else {
			used := cfgFile
			if used == "" {
				used = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			tempLogger.Error("Error reading configuration file", slog.String("path", used), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("%w: reading config file %q: %w", converter.ErrInvalidConfiguration, used, err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
		tempLogger.Debug("Using configuration file", slog.String("path", opts.ConfigFilePath))
	}

	opts.ProfileName = profileName
	if profileName != "" {
		if err := applyProfile(v, profileName); err != nil {
			tempLogger.Error(err.Error())
			return opts, tempLogger, err
		}
		tempLogger.Debug("Applied configuration profile", slog.String("profile", profileName))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			tempLogger.Debug("Flag lookup failed during binding", slog.String("flag", name))
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return opts, tempLogger, fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}

	opts.AppVersion = appVersion
	if err := v.Unmarshal(&opts); err != nil {
		tempLogger.Error("Error unmarshalling configuration", slog.Any("error", err))
		return opts, tempLogger, fmt.Errorf("%w: %w", converter.ErrInvalidConfiguration, err)
	}

	if err := applySwitchFlags(&opts, flags); err != nil {
		tempLogger.Error(err.Error())
		return opts, tempLogger, err
	}

	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	opts.Logger = logHandler

	if err := validate(&opts, logger); err != nil {
		return opts, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", opts.ConfigFilePath),
		slog.String("profile", opts.ProfileName),
		slog.Int("width", opts.TabWidth),
		slog.String("lineEnding", string(opts.LineEnding)),
		slog.Bool("trim", opts.Trim),
		slog.Bool("recursive", opts.Recursive),
		slog.String("logLevel", logLevel.String()),
	)
	return opts, logger, nil
}

// applyProfile merges profiles.<name> over the file settings.
func applyProfile(v *viper.Viper, name string) error {
	key := "profiles." + name
	if !v.IsSet(key) {
		path := v.ConfigFileUsed()
		if path == "" {
			path = "(no config file found)"
		}
		return fmt.Errorf("%w: profile %q not found in config file %s", converter.ErrInvalidConfiguration, name, path)
	}
	sub := v.Sub(key)
	if sub == nil {
		return fmt.Errorf("%w: profile %q is not a mapping", converter.ErrInvalidConfiguration, name)
	}
	if err := v.MergeConfigMap(sub.AllSettings()); err != nil {
		return fmt.Errorf("merging profile %q: %w", name, err)
	}
	return nil
}

// applySwitchFlags handles the flags that force a value rather than set a key.
func applySwitchFlags(opts *converter.Options, flags *pflag.FlagSet) error {
	lf, _ := flags.GetBool("lf")
	crlf, _ := flags.GetBool("crlf")
	switch {
	case lf && crlf:
		return fmt.Errorf("%w: --lf and --crlf are mutually exclusive", converter.ErrInvalidConfiguration)
	case lf:
		opts.LineEnding = converter.LineEndingLF
	case crlf:
		opts.LineEnding = converter.LineEndingCRLF
	}
	if notrim, _ := flags.GetBool("notrim"); notrim {
		opts.Trim = false
	}
	if norec, _ := flags.GetBool("norec"); norec {
		opts.Recursive = false
	}
	return nil
}

// validate performs semantic validation and derives dependent settings.
// Every error wraps converter.ErrInvalidConfiguration.
func validate(opts *converter.Options, logger *slog.Logger) error {
	if opts.LineEnding == "" {
		opts.LineEnding = converter.LineEndingIgnore
	}
	if err := opts.TransformConfig().Validate(); err != nil {
		logger.Error("Invalid transformation settings", slog.Any("error", err))
		return err
	}
	if opts.Concurrency < 0 {
		err := fmt.Errorf("%w: invalid value '%d' for key 'concurrency' (flag --concurrency). Must be >= 0", converter.ErrInvalidConfiguration, opts.Concurrency)
		logger.Error(err.Error(), slog.String("key", "concurrency"), slog.Int("value", opts.Concurrency))
		return err
	}
	switch opts.OutputFormat {
	case converter.OutputFormatText, converter.OutputFormatJSON, converter.OutputFormatNone:
	default:
		err := fmt.Errorf("%w: invalid value '%s' for key 'outputFormat' (flag --output-format). Allowed: text, json, none", converter.ErrInvalidConfiguration, opts.OutputFormat)
		logger.Error(err.Error(), slog.String("key", "outputFormat"), slog.String("value", string(opts.OutputFormat)))
		return err
	}
	for _, pattern := range opts.ExcludePatterns {
		if strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(pattern), "!")) == "" {
			err := fmt.Errorf("%w: empty exclude pattern %q", converter.ErrInvalidConfiguration, pattern)
			logger.Error(err.Error(), slog.String("key", "exclude"))
			return err
		}
	}

	if opts.Verbose && opts.TuiEnabled {
		logger.Debug("Verbose mode enabled, TUI disabled")
		opts.TuiEnabled = false
	}
	return nil
}

// setDefaults establishes the default values for configuration options in Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("width", converter.DefaultTabWidth)
	v.SetDefault("lineEnding", string(converter.DefaultLineEnding))
	v.SetDefault("trim", converter.DefaultTrim)
	v.SetDefault("recursive", converter.DefaultRecursive)

	v.SetDefault("concurrency", converter.DefaultConcurrency)
	v.SetDefault("check", converter.DefaultCheckOnly)
	v.SetDefault("outputFormat", string(converter.DefaultOutputFormat))
	v.SetDefault("tui", converter.DefaultTuiEnabled)
	v.SetDefault("verbose", converter.DefaultVerbose)

	v.SetDefault("exclude", []string{})
	v.SetDefault("skipBinary", converter.DefaultSkipBinary)
	v.SetDefault("skipVendor", converter.DefaultSkipVendor)
	v.SetDefault("gitTracked", converter.DefaultGitTracked)
}
