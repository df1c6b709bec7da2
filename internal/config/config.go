package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	errs "github.com/ksyq12/certrenew/internal/errors"
)

// Proxy control types
const (
	ProxyTypeDocker  = "docker"
	ProxyTypeSystemd = "systemd"
)

// Defaults
const (
	DefaultConfigFile  = "config.json"
	DefaultProxyName   = "reverse-proxy"
	DefaultVolumesRoot = "/var/lib/docker/volumes"
	DefaultLiveDir     = "/etc/letsencrypt/live"
	DefaultLogFile     = "cert-renewal.log"
	EnvPrefix          = "CERTRENEW"
)

// Config represents the application configuration
type Config struct {
	Domains []Domain      `mapstructure:"domains" json:"domains" yaml:"domains"`
	Proxy   ProxyConfig   `mapstructure:"proxy" json:"proxy" yaml:"proxy"`
	Paths   PathsConfig   `mapstructure:"paths" json:"paths" yaml:"paths"`
	Certbot CertbotConfig `mapstructure:"certbot" json:"certbot" yaml:"certbot"`
	LogFile string        `mapstructure:"log_file" json:"log_file" yaml:"log_file"`
}

// ProxyConfig describes how the reverse proxy is stopped and started.
type ProxyConfig struct {
	Name string `mapstructure:"name" json:"name" yaml:"name"` // container or unit name
	Type string `mapstructure:"type" json:"type" yaml:"type"` // docker, systemd
}

// PathsConfig holds the filesystem locations certificates move between.
type PathsConfig struct {
	VolumesRoot string `mapstructure:"volumes_root" json:"volumes_root" yaml:"volumes_root"`
	LiveDir     string `mapstructure:"live_dir" json:"live_dir" yaml:"live_dir"`
}

// CertbotConfig tunes the certbot invocation.
type CertbotConfig struct {
	Verbose bool   `mapstructure:"verbose" json:"verbose" yaml:"verbose"`
	Email   string `mapstructure:"email" json:"email,omitempty" yaml:"email,omitempty"`
}

// New creates a new Config with default values and no domains
func New() *Config {
	return &Config{
		Domains: []Domain{},
		Proxy: ProxyConfig{
			Name: DefaultProxyName,
			Type: ProxyTypeDocker,
		},
		Paths: PathsConfig{
			VolumesRoot: DefaultVolumesRoot,
			LiveDir:     DefaultLiveDir,
		},
		Certbot: CertbotConfig{
			Verbose: true,
		},
		LogFile: DefaultLogFile,
	}
}

// newViper returns a viper instance carrying defaults and environment bindings.
func newViper() *viper.Viper {
	v := viper.New()

	def := New()
	v.SetDefault("proxy.name", def.Proxy.Name)
	v.SetDefault("proxy.type", def.Proxy.Type)
	v.SetDefault("paths.volumes_root", def.Paths.VolumesRoot)
	v.SetDefault("paths.live_dir", def.Paths.LiveDir)
	v.SetDefault("certbot.verbose", def.Certbot.Verbose)
	v.SetDefault("certbot.email", def.Certbot.Email)
	v.SetDefault("log_file", def.LogFile)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Defaults returns the configuration built from defaults and environment
// only. It is used to reach the reverse proxy when the file cannot be loaded.
func Defaults() *Config {
	cfg := New()
	if err := newViper().Unmarshal(cfg); err != nil {
		return New()
	}
	cfg.Domains = []Domain{}
	return cfg
}

// Load reads the config file at path.
//
// Once the file is parsed, a config that fails validation is still
// returned together with the error, so the caller can reach the proxy and
// log file it names. Its domain list is then empty. A nil config means the
// file could not be read or decoded.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	default:
		v.SetConfigType("json")
	}

	if err := v.ReadInConfig(); err != nil {
		if errs.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errs.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", errs.ErrConfigInvalid, err)
	}

	var set settings
	if err := v.Unmarshal(&set); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfigInvalid, err)
	}
	cfg := &Config{
		Domains: []Domain{},
		Proxy:   set.Proxy,
		Paths:   set.Paths,
		Certbot: set.Certbot,
		LogFile: set.LogFile,
	}

	if err := loadDomains(v, cfg); err != nil {
		cfg.Domains = []Domain{}
		return cfg, err
	}
	return cfg, nil
}

// settings is everything in the file except the domain list
type settings struct {
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	Paths   PathsConfig   `mapstructure:"paths"`
	Certbot CertbotConfig `mapstructure:"certbot"`
	LogFile string        `mapstructure:"log_file"`
}

// loadDomains decodes the domain list into cfg and validates the result
func loadDomains(v *viper.Viper, cfg *Config) error {
	if err := checkDomainList(v.Get("domains")); err != nil {
		return err
	}
	if err := v.UnmarshalKey("domains", &cfg.Domains); err != nil {
		return fmt.Errorf("%w: %v", errs.ErrConfigInvalid, err)
	}
	for i, d := range cfg.Domains {
		if strings.TrimSpace(d.URL) == "" {
			return errs.Config(fmt.Sprintf("domain entry %d has no url", i+1))
		}
	}
	return cfg.Validate(false)
}

// checkDomainList verifies the raw "domains" value is a list of objects.
func checkDomainList(raw interface{}) error {
	if raw == nil {
		return errs.ErrNoDomains
	}
	list, ok := raw.([]interface{})
	if !ok {
		return errs.ErrNoDomains
	}
	for i, item := range list {
		if _, ok := item.(map[string]interface{}); !ok {
			return errs.Config(fmt.Sprintf("domain entry %d is not an object", i+1))
		}
	}
	return nil
}

// Validate checks the settings. With strict, every domain and volume name
// must also be a plain name that cannot escape its directory.
func (c *Config) Validate(strict bool) error {
	switch c.Proxy.Type {
	case ProxyTypeDocker, ProxyTypeSystemd:
	default:
		return fmt.Errorf("%w: %q (available: %s, %s)", errs.ErrUnknownProxyType, c.Proxy.Type, ProxyTypeDocker, ProxyTypeSystemd)
	}
	if c.Proxy.Name == "" {
		return errs.Config("proxy name cannot be empty")
	}
	if c.Paths.VolumesRoot == "" {
		return errs.Config("paths.volumes_root cannot be empty")
	}
	if c.Paths.LiveDir == "" {
		return errs.Config("paths.live_dir cannot be empty")
	}

	if !strict {
		return nil
	}
	for _, d := range c.Domains {
		if err := ValidateDomainName(d.URL); err != nil {
			return err
		}
		if err := ValidateVolumeName(d.Volume()); err != nil {
			return err
		}
	}
	return nil
}

// Select returns the configured domains named in urls, in configuration
// order. An empty urls selects every domain.
func (c *Config) Select(urls []string) ([]Domain, error) {
	if len(urls) == 0 {
		return c.Domains, nil
	}

	wanted := make(map[string]bool, len(urls))
	for _, u := range urls {
		wanted[u] = true
	}

	selected := make([]Domain, 0, len(urls))
	for _, d := range c.Domains {
		if wanted[d.URL] {
			selected = append(selected, d)
			delete(wanted, d.URL)
		}
	}

	for _, u := range urls {
		if wanted[u] {
			return nil, fmt.Errorf("%w: %s", errs.ErrDomainNotConfigured, u)
		}
	}
	return selected, nil
}

// YAML renders the configuration as YAML.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Sample returns an example configuration for config init.
func Sample() *Config {
	cfg := New()
	cfg.Domains = []Domain{
		{URL: "example.com"},
		{URL: "www.example.com", DockerVolume: "custom-certs"},
	}
	return cfg
}

// WriteSample writes the sample configuration as JSON to path.
func WriteSample(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errs.Config(fmt.Sprintf("%s already exists (use --force to overwrite)", path))
	}

	data, err := json.MarshalIndent(Sample(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LoadEnvFile loads environment variables from a .env file.
// A missing file is not an error; variables already set are kept.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errs.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errs.Wrap(errs.ErrCodeConfig, "failed to load "+path, err)
	}
	return nil
}
