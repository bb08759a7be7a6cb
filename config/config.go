package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/prebid/go-tcf/errortypes"
	"github.com/spf13/viper"
)

// MinCacheSizeBytes is the smallest vendor list cache freecache will allocate.
const MinCacheSizeBytes = 512 * 1024

// Configuration specifies the static application config.
type Configuration struct {
	Decoder    Decoder    `mapstructure:"decoder"`
	VendorList VendorList `mapstructure:"vendor_list"`
	Metrics    Metrics    `mapstructure:"metrics"`
	Output     Output     `mapstructure:"output"`
}

// Decoder controls how consent strings are parsed.
type Decoder struct {
	// Eager decodes every field while parsing, so a string with any unreadable field fails as a whole.
	Eager bool `mapstructure:"eager"`
}

// VendorList locates the Global Vendor List and CMP list files and sizes their cache.
type VendorList struct {
	GVLPath        string `mapstructure:"gvl_path"`
	CMPListPath    string `mapstructure:"cmp_list_path"`
	CacheSizeBytes int    `mapstructure:"cache_size_bytes"`
	TTLSeconds     int    `mapstructure:"ttl_seconds"`
	IncludeDeleted bool   `mapstructure:"include_deleted"`
}

// TTL converts TTLSeconds to a Duration.
func (cfg *VendorList) TTL() time.Duration {
	return time.Duration(cfg.TTLSeconds) * time.Second
}

func (cfg *VendorList) validate(errs []error) []error {
	if cfg.CacheSizeBytes < MinCacheSizeBytes {
		errs = append(errs, fmt.Errorf("vendor_list.cache_size_bytes must be at least %d. Got %d", MinCacheSizeBytes, cfg.CacheSizeBytes))
	}
	if cfg.TTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("vendor_list.ttl_seconds must not be negative. Got %d", cfg.TTLSeconds))
	}
	return errs
}

type Metrics struct {
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
	GoMetrics  GoMetrics         `mapstructure:"go_metrics"`
}

// PrometheusMetrics configures the Prometheus engine. Metrics are gathered from its registry by the embedding program.
type PrometheusMetrics struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
}

func (cfg *PrometheusMetrics) validate(errs []error) []error {
	for key, value := range map[string]string{"namespace": cfg.Namespace, "subsystem": cfg.Subsystem} {
		if strings.ContainsAny(value, " .-") {
			errs = append(errs, fmt.Errorf("metrics.prometheus.%s must be a valid metric name prefix. Got %q", key, value))
		}
	}
	return errs
}

// GoMetrics configures the go-metrics engine.
type GoMetrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Prefix  string `mapstructure:"prefix"`
}

// Output configures the command line decoder.
type Output struct {
	Format      string `mapstructure:"format"`
	Concurrency int    `mapstructure:"concurrency"`
}

const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

func (cfg *Output) validate(errs []error) []error {
	if cfg.Format != OutputFormatJSON && cfg.Format != OutputFormatYAML {
		errs = append(errs, fmt.Errorf("output.format must be %q or %q. Got %q", OutputFormatJSON, OutputFormatYAML, cfg.Format))
	}
	if cfg.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("output.concurrency must be positive. Got %d", cfg.Concurrency))
	}
	return errs
}

func (cfg *Configuration) validate() []error {
	var errs []error
	errs = cfg.VendorList.validate(errs)
	errs = cfg.Metrics.Prometheus.validate(errs)
	errs = cfg.Output.validate(errs)
	return errs
}

// New uses viper to get our configuration.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}
	c.Output.Format = strings.ToLower(c.Output.Format)

	glog.Infof("Resolved configuration: decoder.eager=%t vendor_list.gvl_path=%q vendor_list.cmp_list_path=%q output.format=%s",
		c.Decoder.Eager, c.VendorList.GVLPath, c.VendorList.CMPListPath, c.Output.Format)

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypes.NewAggregateErrors("validation errors", errs)
	}
	return &c, nil
}

// SetupViper registers defaults, the config file to read and environment overrides.
// Set filename to "" to skip reading a config file.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("decoder.eager", false)
	v.SetDefault("vendor_list.gvl_path", "")
	v.SetDefault("vendor_list.cmp_list_path", "")
	v.SetDefault("vendor_list.cache_size_bytes", 10*1024*1024)
	v.SetDefault("vendor_list.ttl_seconds", 86400)
	v.SetDefault("vendor_list.include_deleted", false)
	v.SetDefault("metrics.prometheus.enabled", false)
	v.SetDefault("metrics.prometheus.namespace", "")
	v.SetDefault("metrics.prometheus.subsystem", "")
	v.SetDefault("metrics.go_metrics.enabled", false)
	v.SetDefault("metrics.go_metrics.prefix", "tcf.")
	v.SetDefault("output.format", OutputFormatJSON)
	v.SetDefault("output.concurrency", 4)

	v.SetEnvPrefix("TCF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if filename != "" {
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				glog.Warningf("Could not read config file %s: %v", filename, err)
			}
		}
	}
}
