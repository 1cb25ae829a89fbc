package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultAddr        = "0.0.0.0:5000"
	DefaultScriptName  = "netscan.sh"
	DefaultResultsName = "scan_results.json"
	DefaultIndexName   = "index.html"
	DefaultScanType    = "1"
)

// Default returns a configuration with every field populated.
// BaseDir is left to the caller; Load fills it from the config location.
func Default() *Config {
	cfg := &Config{}
	cfg.Service.Name = "netscan-api"
	cfg.Service.Addr = DefaultAddr
	cfg.Service.LogLevel = "info"

	cfg.Network.LinkSource = "ip"
	cfg.Network.IPCommand = "ip"
	cfg.Network.Timeout = "5s"

	cfg.Scan.ScriptPath = DefaultScriptName
	cfg.Scan.ScanType = DefaultScanType
	cfg.Scan.Timeout = "300s"

	cfg.Privilege.Command = "sudo"

	cfg.Files.IndexFile = DefaultIndexName
	cfg.Files.ResultsFile = DefaultResultsName

	cfg.History.Driver = "memory"
	cfg.History.Size = 100

	cfg.MDNS.Instance = "netscan"
	cfg.MDNS.Service = "_http._tcp"
	return cfg
}

// Load reads the JSON configuration at configPath on top of Default().
// A missing file is not an error: defaults are returned with BaseDir set
// to the directory the file would have lived in.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// keep defaults
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	if cfg.Files.BaseDir == "" {
		cfg.Files.BaseDir = filepath.Dir(configPath)
	}
	base, err := filepath.Abs(cfg.Files.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base dir %s: %w", cfg.Files.BaseDir, err)
	}
	cfg.Files.BaseDir = base

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail at request time.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Scan.ScriptPath) == "" {
		errs = append(errs, errors.New("scan.script_path must not be empty"))
	}
	if strings.TrimSpace(c.Scan.ScanType) == "" {
		errs = append(errs, errors.New("scan.scan_type must not be empty"))
	}
	if strings.ContainsAny(c.Scan.ScanType, "\r\n") {
		errs = append(errs, errors.New("scan.scan_type must be a single line"))
	}
	if c.Scan.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("scan.max_concurrent must be >= 0, got %d", c.Scan.MaxConcurrent))
	}
	if c.Scan.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("scan.rate_limit must be >= 0, got %v", c.Scan.RateLimit))
	}
	if c.Scan.RateLimit > 0 && c.Scan.Burst < 1 {
		errs = append(errs, errors.New("scan.burst must be >= 1 when scan.rate_limit is set"))
	}

	switch c.Network.LinkSource {
	case "ip", "net", "pcap":
	default:
		errs = append(errs, fmt.Errorf("network.link_source must be ip, net or pcap, got %q", c.Network.LinkSource))
	}

	switch c.History.Driver {
	case "memory":
		if c.History.Size < 1 {
			errs = append(errs, fmt.Errorf("history.size must be >= 1, got %d", c.History.Size))
		}
	case "mysql", "postgres":
		if c.History.DSN == "" {
			errs = append(errs, fmt.Errorf("history.dsn is required for driver %s", c.History.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("history.driver must be memory, mysql or postgres, got %q", c.History.Driver))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Resolve makes p absolute relative to Files.BaseDir.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Files.BaseDir, p)
}

// ScriptPath returns the absolute path of the scan script.
func (c *Config) ScriptPath() string {
	return c.Resolve(c.Scan.ScriptPath)
}

// ResultsPath returns the absolute path of the results artifact.
func (c *Config) ResultsPath() string {
	return c.Resolve(c.Files.ResultsFile)
}

// IndexPath returns the absolute path of the front-end HTML.
func (c *Config) IndexPath() string {
	return c.Resolve(c.Files.IndexFile)
}
