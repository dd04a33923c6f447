// Package config loads iconmerge run options.
//
// Options come from, in increasing precedence: built-in defaults, a
// .iconmerge.yaml file at the repository root, ICONMERGE_* environment
// variables and explicitly set command-line flags.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// FileName is the config file name looked up at the repository root, without extension.
	FileName = ".iconmerge"

	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "ICONMERGE"
)

// Option keys.
const (
	KeyWorkers    = "workers"
	KeyStage      = "stage"
	KeyExtensions = "extensions"
	KeyDryRun     = "dry_run"
)

// Flag names bound to option keys when present on the flag set.
var flagKeys = map[string]string{
	"workers": KeyWorkers,
	"stage":   KeyStage,
	"ext":     KeyExtensions,
	"dry-run": KeyDryRun,
}

// ErrInvalidOption indicates an option value outside its allowed range.
var ErrInvalidOption = errors.New("invalid option")

// Options controls a merge run.
type Options struct {
	// Workers bounds the number of files merged concurrently.
	Workers int

	// Stage runs git add on every file written.
	Stage bool

	// Extensions lists the lower-case file suffixes considered icons.
	Extensions []string

	// DryRun merges without touching the working tree.
	DryRun bool

	// Source is the config file that was read, if any.
	Source string
}

// Defaults returns the options used when nothing is configured.
func Defaults() Options {
	return Options{
		Workers:    runtime.NumCPU(),
		Extensions: []string{".dmi"},
	}
}

// Load resolves options for the repository at root. flags may be nil.
func Load(root string, flags *pflag.FlagSet) (*Options, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault(KeyWorkers, defaults.Workers)
	v.SetDefault(KeyStage, defaults.Stage)
	v.SetDefault(KeyExtensions, defaults.Extensions)
	v.SetDefault(KeyDryRun, defaults.DryRun)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if root != "" {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(root)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	opts := &Options{
		Workers:    v.GetInt(KeyWorkers),
		Stage:      v.GetBool(KeyStage),
		Extensions: normalizeExtensions(v.GetStringSlice(KeyExtensions)),
		DryRun:     v.GetBool(KeyDryRun),
		Source:     v.ConfigFileUsed(),
	}

	if opts.Workers < 1 {
		return nil, fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidOption, opts.Workers)
	}
	if len(opts.Extensions) == 0 {
		return nil, fmt.Errorf("%w: extensions must not be empty", ErrInvalidOption)
	}

	return opts, nil
}

// MatchesExtension reports whether path ends in one of the configured extensions.
func (o *Options) MatchesExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range o.Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// normalizeExtensions splits comma lists, lower-cases, adds the leading dot and
// drops duplicates.
func normalizeExtensions(raw []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, entry := range raw {
		for _, ext := range strings.Split(entry, ",") {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			if !seen[ext] {
				seen[ext] = true
				out = append(out, ext)
			}
		}
	}
	return out
}
