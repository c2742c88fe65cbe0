package configuration

import (
	"secscan-go/internal/alerting"
	"secscan-go/internal/scanner"
)

const (
	SecscanPath       = "/etc/secscan"
	DefaultConfigPath = SecscanPath + "/config.yml"
	DefaultDBPath     = "/var/secscan/db/secscan.db"
)

// ScanPlanConfig is one scan type entry in the configuration file.
type ScanPlanConfig struct {
	Type    string `mapstructure:"type" yaml:"type"`
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
}

// ScanConfig is the full parsed configuration file.
type ScanConfig struct {
	ProjectID    string               `mapstructure:"project_id" yaml:"project_id"`
	Ecosystem    string               `mapstructure:"ecosystem" yaml:"ecosystem"`
	Interval     string               `mapstructure:"interval" yaml:"interval"`
	Scans        []ScanPlanConfig     `mapstructure:"scans" yaml:"scans"`
	Dependencies []scanner.Dependency `mapstructure:"dependencies" yaml:"dependencies"`
	Policy       *scanner.PolicyInput `mapstructure:"policy" yaml:"policy"`
	Thresholds   alerting.Thresholds  `mapstructure:"thresholds" yaml:"thresholds"`

	Assessment struct {
		Serialize bool `mapstructure:"serialize" yaml:"serialize"`
	} `mapstructure:"assessment" yaml:"assessment"`

	Sources struct {
		OSVURL      string `mapstructure:"osv_url" yaml:"osv_url"`
		MirrorURL   string `mapstructure:"mirror_url" yaml:"mirror_url"`
		MirrorToken string `mapstructure:"mirror_token" yaml:"mirror_token"`
	} `mapstructure:"sources" yaml:"sources"`

	Webhook struct {
		URL   string `mapstructure:"url" yaml:"url"`
		Token string `mapstructure:"token" yaml:"token"`
	} `mapstructure:"webhook" yaml:"webhook"`

	API struct {
		Bind string `mapstructure:"bind" yaml:"bind"`
		Port string `mapstructure:"port" yaml:"port"`
	} `mapstructure:"api" yaml:"api"`

	Log struct {
		Level string `mapstructure:"level" yaml:"level"`
		File  string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"log" yaml:"log"`
}

type AppConfig struct {
	ConfigFile string
	DBFile     string
	Scan       ScanConfig
}

var Config AppConfig
