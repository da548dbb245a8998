// Package config loads and validates the ifwatch configuration.
package config

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	jsonparser "github.com/knadh/koanf/parsers/json"
	yamlparser "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jkoelker/ifwatch/pkg/netutil"
)

const (
	// FamilyAll lists both address families.
	FamilyAll = "all"

	// Family4 restricts listings to IPv4.
	Family4 = "4"

	// Family6 restricts listings to IPv6.
	Family6 = "6"
)

const (
	defaultDebounce    = 500 * time.Millisecond
	defaultPollTimeout = 30 * time.Second
)

var (
	// ErrUnsupportedExtension indicates an unsupported configuration file extension.
	ErrUnsupportedExtension = errors.New("unsupported config extension")

	// ErrNegativeDuration indicates a duration field with a negative value.
	ErrNegativeDuration = errors.New("duration must not be negative")

	// ErrBadIgnorePattern indicates an ignore entry that is not a valid glob.
	ErrBadIgnorePattern = errors.New("invalid ignore pattern")

	// ErrUnknownFamily indicates an unsupported address family selector.
	ErrUnknownFamily = errors.New(`family must be "4", "6", or "all"`)
)

type Config struct {
	// Watch configures the change watcher.
	Watch WatchConfig `json:"watch"`

	// List configures interface listings.
	List ListConfig `json:"list"`
}

type WatchConfig struct {
	// Ignore lists interface name globs whose events are suppressed.
	Ignore []string `json:"ignore,omitempty"`

	// Debounce coalesces changes arriving within the window into one
	// report.
	Debounce time.Duration `json:"debounce,omitempty"`

	// PollTimeout bounds each one-shot wait when running in poll mode.
	PollTimeout time.Duration `json:"poll_timeout,omitempty"`
}

type ListConfig struct {
	// Loopback includes loopback interfaces in listings.
	Loopback bool `json:"loopback"`

	// Family restricts listings to "4", "6", or "all".
	Family string `json:"family,omitempty"`
}

// ValidationError aggregates every issue found in a configuration.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Issues, "; ")
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()

	return cfg
}

// ApplyDefaults populates unset configuration fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = defaultDebounce
	}

	if c.Watch.PollTimeout == 0 {
		c.Watch.PollTimeout = defaultPollTimeout
	}

	if c.List.Family == "" {
		c.List.Family = FamilyAll
	}
}

// Validate reports every issue in the configuration at once.
func (c *Config) Validate() error {
	var issues []string

	if c.Watch.Debounce < 0 {
		issues = append(issues, fmt.Sprintf("watch.debounce: %v", ErrNegativeDuration))
	}

	if c.Watch.PollTimeout < 0 {
		issues = append(issues, fmt.Sprintf("watch.poll_timeout: %v", ErrNegativeDuration))
	}

	for idx, pattern := range c.Watch.Ignore {
		if _, err := path.Match(pattern, ""); err != nil {
			issues = append(
				issues,
				fmt.Sprintf("watch.ignore[%d]: %v: %q", idx, ErrBadIgnorePattern, pattern),
			)
		}
	}

	switch c.List.Family {
	case Family4, Family6, FamilyAll:
	default:
		issues = append(issues, fmt.Sprintf("list.family: %v: %q", ErrUnknownFamily, c.List.Family))
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}

	return nil
}

// Ignored reports whether events for the named interface are suppressed.
func (c *Config) Ignored(name string) bool {
	return netutil.MatchAny(c.Watch.Ignore, name)
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", "":
		return yamlparser.Parser(), nil
	case ".json":
		return jsonparser.Parser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, filepath.Ext(path))
	}
}

// Load reads, decodes, and validates the configuration at path. The format
// is chosen by extension (YAML or JSON).
func Load(path string) (*Config, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}

	konf := koanf.New(".")
	if err := konf.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load config file: %w", err)
	}

	cfg := &Config{}
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           cfg,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
		},
	}

	if err := konf.UnmarshalWithConf("", cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
