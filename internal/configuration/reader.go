package configuration

import (
	"fmt"
	"os"
	"time"

	"secscan-go/internal/helper"
	"secscan-go/internal/scanner"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type ConfigReader struct {
	viper *viper.Viper
}

func NewConfigReader() *ConfigReader {
	v := viper.New()

	v.SetDefault("ecosystem", "PyPI")
	v.SetDefault("interval", "1h")
	v.SetDefault("thresholds.critical_issues", 1)
	v.SetDefault("thresholds.high_issues", 3)
	v.SetDefault("thresholds.risk_score", 70.0)
	v.SetDefault("assessment.serialize", true)
	v.SetDefault("api.bind", "0.0.0.0")
	v.SetDefault("api.port", "8090")
	v.SetDefault("log.level", "info")

	return &ConfigReader{viper: v}
}

func (cr *ConfigReader) ReadConfig(filePath string) error {
	cr.viper.SetConfigFile(filePath)
	cr.viper.SetConfigType("yaml")

	if err := cr.viper.ReadInConfig(); err != nil {
		return err
	}

	return nil
}

func (cr *ConfigReader) Parse() (*ScanConfig, error) {
	var cfg ScanConfig
	if err := cr.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if len(cfg.Scans) == 0 {
		cfg.Scans = []ScanPlanConfig{
			{Type: string(scanner.TypeDependency), Timeout: "5m"},
			{Type: string(scanner.TypeCompliance), Timeout: "2m"},
		}
	}

	for _, plan := range cfg.Scans {
		if _, err := scanner.ParseScanType(plan.Type); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// ScanInterval returns the parsed assessment interval.
func (c *ScanConfig) ScanInterval() time.Duration {
	return helper.ParseDuration(c.Interval, "1h")
}

// PlanTimeout returns the parsed timeout for one plan entry.
func (p *ScanPlanConfig) PlanTimeout() time.Duration {
	return helper.ParseDuration(p.Timeout, "5m")
}

// UpdateConfig validates the raw YAML body and writes it to the config
// file. Changes take effect on restart.
func UpdateConfig(path string, body []byte) error {
	var cfg ScanConfig
	if err := yaml.Unmarshal(body, &cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for _, plan := range cfg.Scans {
		if _, err := scanner.ParseScanType(plan.Type); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	return nil
}
