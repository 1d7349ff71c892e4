package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rohmanhakim/css-svg/internal/build"
)

// DefaultMaxWeightResource is the default ceiling, in bytes, for a resource
// to be eligible for inlining.
const DefaultMaxWeightResource int64 = 4096

// Options are the caller-supplied overrides layered onto the defaults.
// Zero values mean "use the default". Options is taken by value and is
// never modified.
type Options struct {
	BaseDirectory     string
	MaxWeightResource int64
	Verbose           bool
}

type Config struct {
	//===============
	// Resolution
	//===============
	// Directory that local references are resolved against.
	// Empty means the current working directory.
	baseDirectory string
	// Scheme used to dial protocol-relative references (//host/path)
	defaultScheme string

	//===============
	// Limits
	//===============
	// Maximum size in bytes of a resource eligible for inlining
	maxWeightResource int64

	//===============
	// Fetch
	//===============
	// Maximum time of a single remote fetch
	timeout time.Duration
	// User agent sent with remote fetches
	userAgent string
	// Maximum fetch attempts for a remote resource; 1 disables retrying
	maxAttempt int
	// Randomized variation added on top of each backoff delay
	jitter time.Duration
	// Controls the random number generator used for jitter
	randomSeed int64
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Runtime
	//===============
	// Whether skipped and inlined references are reported
	verbose bool
	// Number of stylesheets rewritten concurrently by the CLI
	concurrency int
}

type configDTO struct {
	BaseDirectory          string        `yaml:"baseDirectory,omitempty"`
	DefaultScheme          string        `yaml:"defaultScheme,omitempty"`
	MaxWeightResource      int64         `yaml:"maxWeightResource,omitempty"`
	Timeout                time.Duration `yaml:"timeout,omitempty"`
	UserAgent              string        `yaml:"userAgent,omitempty"`
	MaxAttempt             int           `yaml:"maxAttempt,omitempty"`
	Jitter                 time.Duration `yaml:"jitter,omitempty"`
	RandomSeed             int64         `yaml:"randomSeed,omitempty"`
	BackoffInitialDuration time.Duration `yaml:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `yaml:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `yaml:"backoffMaxDuration,omitempty"`
	Verbose                bool          `yaml:"verbose,omitempty"`
	Concurrency            int           `yaml:"concurrency,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	builder := WithDefault().WithOptions(Options{
		BaseDirectory:     dto.BaseDirectory,
		MaxWeightResource: dto.MaxWeightResource,
		Verbose:           dto.Verbose,
	})

	// Only override if non-zero value is provided
	if dto.DefaultScheme != "" {
		builder.WithDefaultScheme(dto.DefaultScheme)
	}
	if dto.Timeout != 0 {
		builder.WithTimeout(dto.Timeout)
	}
	if dto.UserAgent != "" {
		builder.WithUserAgent(dto.UserAgent)
	}
	if dto.MaxAttempt != 0 {
		builder.WithMaxAttempt(dto.MaxAttempt)
	}
	if dto.Jitter != 0 {
		builder.WithJitter(dto.Jitter)
	}
	if dto.RandomSeed != 0 {
		builder.WithRandomSeed(dto.RandomSeed)
	}
	if dto.BackoffInitialDuration != 0 {
		builder.WithBackoffInitialDuration(dto.BackoffInitialDuration)
	}
	if dto.BackoffMultiplier != 0 {
		builder.WithBackoffMultiplier(dto.BackoffMultiplier)
	}
	if dto.BackoffMaxDuration != 0 {
		builder.WithBackoffMaxDuration(dto.BackoffMaxDuration)
	}
	if dto.Concurrency != 0 {
		builder.WithConcurrency(dto.Concurrency)
	}

	return builder.Build()
}

// WithConfigFile loads a YAML (or JSON) configuration file and layers it onto
// the defaults.
func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = yaml.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config builder holding the default value of every field.
func WithDefault() *Config {
	defaultConfig := Config{
		baseDirectory:          "",
		defaultScheme:          "https",
		maxWeightResource:      DefaultMaxWeightResource,
		timeout:                10 * time.Second,
		userAgent:              build.UserAgent(),
		maxAttempt:             1,
		jitter:                 100 * time.Millisecond,
		randomSeed:             time.Now().UnixNano(),
		backoffInitialDuration: 200 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     5 * time.Second,
		verbose:                false,
		concurrency:            4,
	}
	return &defaultConfig
}

// FromOptions layers caller-supplied options onto the defaults.
func FromOptions(opts Options) (Config, error) {
	return WithDefault().WithOptions(opts).Build()
}

// WithOptions applies the non-zero fields of opts.
func (c *Config) WithOptions(opts Options) *Config {
	if opts.BaseDirectory != "" {
		c.baseDirectory = opts.BaseDirectory
	}
	if opts.MaxWeightResource != 0 {
		c.maxWeightResource = opts.MaxWeightResource
	}
	if opts.Verbose {
		c.verbose = true
	}
	return c
}

func (c *Config) WithBaseDirectory(dir string) *Config {
	c.baseDirectory = dir
	return c
}

func (c *Config) WithDefaultScheme(scheme string) *Config {
	c.defaultScheme = scheme
	return c
}

func (c *Config) WithMaxWeightResource(size int64) *Config {
	c.maxWeightResource = size
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithVerbose(verbose bool) *Config {
	c.verbose = verbose
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) Build() (Config, error) {
	if c.maxWeightResource < 0 {
		return Config{}, fmt.Errorf("%w: maxWeightResource cannot be negative, got %d", ErrInvalidConfig, c.maxWeightResource)
	}
	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalidConfig, c.timeout)
	}
	if c.maxAttempt < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempt must be at least 1, got %d", ErrInvalidConfig, c.maxAttempt)
	}
	if c.concurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, c.concurrency)
	}

	scheme := strings.ToLower(c.defaultScheme)
	if scheme != "http" && scheme != "https" {
		return Config{}, fmt.Errorf("%w: defaultScheme must be http or https, got %q", ErrInvalidConfig, c.defaultScheme)
	}
	c.defaultScheme = scheme

	return *c, nil
}

func (c Config) BaseDirectory() string {
	return c.baseDirectory
}

func (c Config) DefaultScheme() string {
	return c.defaultScheme
}

func (c Config) MaxWeightResource() int64 {
	return c.maxWeightResource
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) Verbose() bool {
	return c.verbose
}

func (c Config) Concurrency() int {
	return c.concurrency
}
