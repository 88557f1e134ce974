package config

// This file implements CLI flag registration and layered loading.
// Precedence, lowest first: defaults, config file, TABLEBATCH_* environment
// variables, explicitly set flags.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = "tablebatch"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for tablebatch settings.
const envPrefix = "TABLEBATCH"

// flagKeys maps flag names to viper keys for every flag that feeds Config.
var flagKeys = map[string]string{
	"format":       "format",
	"flavor":       "flavor",
	"pages":        "pages",
	"recursive":    "recursive",
	"force":        "force",
	"validate":     "validate",
	"jobs":         "jobs",
	"timeout":      "timeout",
	"camelot":      "camelot",
	"verbose":      "verbose",
	"log":          "log",
	"metrics-file": "metrics_file",
}

// RegisterFlags defines every tablebatch flag on fs with defaults taken from
// DefaultConfig.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()

	// Extraction.
	fs.StringP("format", "f", string(d.Format), "Export format: csv | json | excel | html | markdown | sqlite")
	fs.String("flavor", string(d.Flavor), "Table detection flavor: stream | lattice")
	fs.String("pages", d.Pages, "Pages to scan, e.g. all, 1, 1-3, 1,4-end")

	// Batch behavior.
	fs.BoolP("recursive", "r", false, "Scan subdirectories of input_dir")
	fs.Bool("force", false, "Reprocess every document, even when up to date")
	fs.Bool("validate", false, "Report out-of-date documents without processing; exit 1 if any")
	fs.IntP("jobs", "j", 0, "Parallel workers (default: number of CPUs)")
	fs.Duration("timeout", 0, "Per-document extraction limit, e.g. 5m (default: none)")
	fs.String("camelot", d.CamelotBin, "Path or name of the camelot executable")

	// Display and utility.
	fs.BoolP("verbose", "v", false, "Verbose output")
	fs.Bool("color", false, "Force colored logs")
	fs.Bool("no-color", false, "Disable colored logs")
	fs.StringP("log", "l", "", "Append logs to file")
	fs.String("metrics-file", "", "Write Prometheus metrics in textfile format after the run")
	fs.String("config", "", "Config file (default: ./tablebatch.yaml when present)")
	fs.BoolP("check", "c", false, "Run dependency diagnostics and exit")
}

// Load resolves the layered configuration for the flags in fs (already
// parsed) and the positional args, then validates it.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	configPath, _ := fs.GetString("config")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default file is fine; a missing explicit one is not.
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := bindFlags(v, fs); err != nil {
		return nil, err
	}
	applyColorFlags(v, fs)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CheckOnly, _ = fs.GetBool("check")
	if err := parsePositionalArgs(&cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("format", string(d.Format))
	v.SetDefault("flavor", string(d.Flavor))
	v.SetDefault("pages", d.Pages)
	v.SetDefault("recursive", d.Recursive)
	v.SetDefault("force", d.Force)
	v.SetDefault("validate", d.ValidateOnly)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("camelot", d.CamelotBin)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("color", string(d.ColorMode))
	v.SetDefault("log", d.LogFile)
	v.SetDefault("metrics_file", d.MetricsFile)
}

// bindFlags binds each registered flag to its viper key. Flags that were not
// set on the command line fall through to env, file and default values.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// applyColorFlags folds the --color / --no-color pair into the "color" key.
// --no-color wins when both are given.
func applyColorFlags(v *viper.Viper, fs *pflag.FlagSet) {
	if on, _ := fs.GetBool("color"); on {
		v.Set("color", string(ColorAlways))
	}
	if off, _ := fs.GetBool("no-color"); off {
		v.Set("color", string(ColorNever))
	}
}

// parsePositionalArgs sets InputDir and OutputDir from args. In --check mode
// positional args are optional.
func parsePositionalArgs(cfg *Config, args []string) error {
	switch {
	case len(args) == 2:
		cfg.InputDir = NormalizeDirArg(args[0])
		cfg.OutputDir = NormalizeDirArg(args[1])
	case len(args) == 0 && cfg.CheckOnly:
		// diagnostics only
	default:
		return ErrMissingArgs
	}
	return nil
}
