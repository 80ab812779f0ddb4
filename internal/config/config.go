package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brogergvhs/mangapdf/internal/chapters"
)

type Config struct {
	Output      string `yaml:"output"`
	Format      string `yaml:"format"`
	KeepFolders bool   `yaml:"keep_folders"`
	Debug       bool   `yaml:"debug"`

	TimeoutSeconds    int `yaml:"timeout_seconds"`
	MaxRetries        int `yaml:"max_retries"`
	RetryDelaySeconds int `yaml:"retry_delay_seconds"`
	SeriesWorkers     int `yaml:"series_workers"`

	DefaultURL   string `yaml:"default_url"`
	DefaultRange string `yaml:"default_range"`
	DefaultList  string `yaml:"default_list"`

	Cookie           string `yaml:"cookie"`
	CookieFile       string `yaml:"cookie_file"`
	UserAgent        string `yaml:"user_agent"`
	CloudflareBypass bool   `yaml:"cloudflare_bypass"`

	MetricsFile string `yaml:"metrics_file"`
}

// Options are command-line overrides. Zero values leave the profile alone.
type Options struct {
	IgnoreConfig     bool
	Debug            bool
	Output           string
	Format           string
	KeepFolders      bool
	TimeoutSeconds   int
	MaxRetries       int
	RetryDelay       int
	SeriesWorkers    int
	DefaultURL       string
	DefaultRange     string
	DefaultList      string
	Cookie           string
	CookieFile       string
	UserAgent        string
	CloudflareBypass bool
	MetricsFile      string
}

func DefaultConfig() *Config {
	return &Config{
		Output:            ".",
		Format:            "pdf",
		TimeoutSeconds:    20,
		MaxRetries:        3,
		RetryDelaySeconds: 2,
		SeriesWorkers:     1,
	}
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// Validate rejects values the downloader cannot work with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Format {
	case "pdf", "cbz":
	default:
		errs = append(errs, fmt.Errorf("format must be pdf or cbz, got %q", c.Format))
	}
	if c.SeriesWorkers < 1 {
		errs = append(errs, fmt.Errorf("series_workers must be at least 1, got %d", c.SeriesWorkers))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries))
	}
	if c.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("timeout_seconds must be at least 1, got %d", c.TimeoutSeconds))
	}
	if c.RetryDelaySeconds < 0 {
		errs = append(errs, fmt.Errorf("retry_delay_seconds cannot be negative, got %d", c.RetryDelaySeconds))
	}
	if err := chapters.ValidateSelection(c.DefaultRange, c.DefaultList); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func LoadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// start from defaults so a profile only needs the keys it changes
	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged reads the active profile, applies overrides and fills gaps with
// defaults. The second result describes where the values came from.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if errors.Is(err, ErrNoConfig) || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory, run `mangapdf config init` to create one)", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := LoadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.Format != "" {
		c.Format = o.Format
	}
	if o.KeepFolders {
		c.KeepFolders = true
	}
	if o.Debug {
		c.Debug = true
	}
	if o.TimeoutSeconds != 0 {
		c.TimeoutSeconds = o.TimeoutSeconds
	}
	if o.MaxRetries != 0 {
		c.MaxRetries = o.MaxRetries
	}
	if o.RetryDelay != 0 {
		c.RetryDelaySeconds = o.RetryDelay
	}
	if o.SeriesWorkers != 0 {
		c.SeriesWorkers = o.SeriesWorkers
	}
	if o.DefaultURL != "" {
		c.DefaultURL = o.DefaultURL
	}
	// a range or list on the command line replaces both profile selections
	if o.DefaultRange != "" || o.DefaultList != "" {
		c.DefaultRange = o.DefaultRange
		c.DefaultList = o.DefaultList
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.CloudflareBypass {
		c.CloudflareBypass = true
	}
	if o.MetricsFile != "" {
		c.MetricsFile = o.MetricsFile
	}
}

func normalizeDefaults(c *Config) {
	d := DefaultConfig()

	if c.Output == "" {
		c.Output = d.Output
	}
	if c.Format == "" {
		c.Format = d.Format
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = d.TimeoutSeconds
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.SeriesWorkers == 0 {
		c.SeriesWorkers = d.SeriesWorkers
	}
}

// Print lists the effective settings, hiding unset optional ones and the
// cookie value.
func (c *Config) Print(w io.Writer) {
	fmt.Fprintf(w, " -output: %s\n", c.Output)
	fmt.Fprintf(w, " -format: %s\n", c.Format)
	fmt.Fprintf(w, " -timeout_seconds: %d\n", c.TimeoutSeconds)
	fmt.Fprintf(w, " -max_retries: %d\n", c.MaxRetries)
	fmt.Fprintf(w, " -retry_delay_seconds: %d\n", c.RetryDelaySeconds)
	fmt.Fprintf(w, " -series_workers: %d\n", c.SeriesWorkers)
	if c.KeepFolders {
		fmt.Fprintf(w, " -keep_folders: %t\n", c.KeepFolders)
	}
	if c.Debug {
		fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
	if c.DefaultURL != "" {
		fmt.Fprintf(w, " -url: %s\n", c.DefaultURL)
	}
	if c.DefaultRange != "" {
		fmt.Fprintf(w, " -range: %s\n", c.DefaultRange)
	}
	if c.DefaultList != "" {
		fmt.Fprintf(w, " -list: %s\n", c.DefaultList)
	}
	if c.Cookie != "" {
		fmt.Fprintf(w, " -cookie: (set)\n")
	}
	if c.CookieFile != "" {
		fmt.Fprintf(w, " -cookie_file: %s\n", c.CookieFile)
	}
	if c.UserAgent != "" {
		fmt.Fprintf(w, " -user_agent: %s\n", c.UserAgent)
	}
	if c.CloudflareBypass {
		fmt.Fprintf(w, " -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
	if c.MetricsFile != "" {
		fmt.Fprintf(w, " -metrics_file: %s\n", c.MetricsFile)
	}
}
