package config

import "time"

// Config represents the application configuration
type Config struct {
	Service struct {
		Name     string `json:"name"`
		Addr     string `json:"addr"`
		LogLevel string `json:"log_level"`
	} `json:"service"`

	Network struct {
		// LinkSource selects how interface names are enumerated: "ip", "net" or "pcap"
		LinkSource string `json:"link_source"`
		IPCommand  string `json:"ip_command"`
		Timeout    string `json:"timeout"`
	} `json:"network"`

	Scan struct {
		ScriptPath    string  `json:"script_path"`
		ScanType      string  `json:"scan_type"`
		Timeout       string  `json:"timeout"`
		MaxConcurrent int     `json:"max_concurrent"`
		RateLimit     float64 `json:"rate_limit"`
		Burst         int     `json:"burst"`
	} `json:"scan"`

	Privilege struct {
		// Command wraps the scan script, e.g. "sudo". Empty runs the script directly.
		Command string   `json:"command"`
		Args    []string `json:"args"`
	} `json:"privilege"`

	Files struct {
		BaseDir     string `json:"base_dir"`
		IndexFile   string `json:"index_file"`
		ResultsFile string `json:"results_file"`
	} `json:"files"`

	History struct {
		// Driver is "memory", "mysql" or "postgres"
		Driver string `json:"driver"`
		DSN    string `json:"dsn"`
		Size   int    `json:"size"`
	} `json:"history"`

	MDNS struct {
		Enabled  bool   `json:"enabled"`
		Instance string `json:"instance"`
		Service  string `json:"service"`
	} `json:"mdns"`
}

// GetScanTimeout returns the scan script timeout as a time.Duration
func (c *Config) GetScanTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.Scan.Timeout)
	if err != nil || timeout <= 0 {
		// Default to 5 minutes if parsing fails
		return 5 * time.Minute
	}
	return timeout
}

// GetNetworkTimeout returns the interface enumeration timeout as a time.Duration
func (c *Config) GetNetworkTimeout() time.Duration {
	timeout, err := time.ParseDuration(c.Network.Timeout)
	if err != nil || timeout <= 0 {
		// Default to 5 seconds if parsing fails
		return 5 * time.Second
	}
	return timeout
}

// GetWriteTimeout returns the HTTP write timeout, which must outlive a scan
func (c *Config) GetWriteTimeout() time.Duration {
	return c.GetScanTimeout() + 30*time.Second
}
