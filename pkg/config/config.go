package config

import (
	"os"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
)

// Config holds user-tunable defaults, loadable from a YAML file.
// Command-line flags take precedence over anything set here.
type Config struct {
	Scan ScanConfig `koanf:"scan"`
}

type ScanConfig struct {
	// PrefixBytes is how much of each file the cheap first-pass
	// fingerprint reads.
	PrefixBytes int64 `koanf:"prefix_bytes"`
	// Workers bounds the comparison worker pool. 0 means NumCPU.
	Workers int `koanf:"workers"`
	// MinSize excludes files smaller than this from duplicate
	// comparison (hard links are still tracked).
	MinSize int64 `koanf:"min_size"`
	// Excludes lists basenames skipped during traversal.
	Excludes []string `koanf:"excludes"`
	// TrustDigest accepts full-content digest equality without a
	// byte-for-byte confirmation pass.
	TrustDigest bool `koanf:"trust_digest"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"scan.prefix_bytes": int64(16 * 1024),
		"scan.workers":      0,
		"scan.min_size":     int64(0),
		"scan.excludes":     []string{},
		"scan.trust_digest": false,
	}
}

// Load reads the config file at path, layered over built-in defaults.
// An empty path, or a path that does not exist, yields the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "load config defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "load config file: %q", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "stat config file: %q", path)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	return cfg, nil
}
