// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracez

import "strconv"

// The single recognised configuration option, in both its property-file
// and environment-variable forms.
const (
	otelSSPExportSampledProperty = "otel.ssp.export.sampled"
	otelSSPExportSampledEnv      = "OTEL_SSP_EXPORT_SAMPLED"
)

// Config is the effective configuration for a Processor. Unknown
// options from whatever key/value source produced it are ignored.
type Config struct {
	// OnlySampledExport is otel.ssp.export.sampled / OTEL_SSP_EXPORT_SAMPLED.
	// Defaults to true.
	OnlySampledExport bool
}

// ConfigOption overrides a field of a Config built with NewConfig.
type ConfigOption func(*Config)

// WithConfigOnlySampledExport overrides Config.OnlySampledExport.
func WithConfigOnlySampledExport(v bool) ConfigOption {
	return func(c *Config) { c.OnlySampledExport = v }
}

// NewConfig returns the default Config with opts applied.
func NewConfig(opts ...ConfigOption) Config {
	c := Config{OnlySampledExport: true}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LoadConfig builds a Config from a property-style key/value source,
// such as env vars or a properties file already split into key/value
// pairs. get is called with both the property-style key
// ("otel.ssp.export.sampled") and the environment-variable style key
// ("OTEL_SSP_EXPORT_SAMPLED"); the first non-empty result wins. Unknown
// keys returned by get (if any were queried) are ignored: this core
// only ever looks up the one recognised option.
func LoadConfig(get func(key string) string) Config {
	cfg := NewConfig()
	raw := get(otelSSPExportSampledProperty)
	if raw == "" {
		raw = get(otelSSPExportSampledEnv)
	}
	if raw == "" {
		return cfg
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		cfg.OnlySampledExport = v
	}
	return cfg
}

// ProcessorOptions converts Config into the ProcessorOption that
// reproduces it, for callers wiring a Processor straight from config.
func (c Config) ProcessorOptions() []ProcessorOption {
	return []ProcessorOption{WithOnlySampledExport(c.OnlySampledExport)}
}
