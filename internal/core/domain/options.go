package domain

import "time"

// Environment selects the build environment profile.
type Environment string

const (
	// EnvDevelopment is the default environment.
	EnvDevelopment Environment = "development"
	// EnvStaging is the staging environment.
	EnvStaging Environment = "staging"
	// EnvProduction is the production environment.
	EnvProduction Environment = "production"
)

// Default resource bounds for the build cache.
const (
	DefaultMaxCacheSizeBytes = int64(1 << 30) // 1 GiB
	DefaultCacheTTL          = 7 * 24 * time.Hour
	DefaultOutputDir         = "build"
	DefaultCacheDir          = ".forge-cache"
)

// BuildOptions configures one build invocation.
type BuildOptions struct {
	Environment Environment
	// ForceRebuild bypasses the cache entirely, for both reads and writes of
	// prior entries; fresh results are still stored.
	ForceRebuild      bool
	OutputDir         string
	CacheDir          string
	MaxCacheSizeBytes int64
	// Timeout bounds the whole invocation. Zero means no wall-clock limit.
	Timeout time.Duration
}

// Normalized returns a copy with zero values replaced by defaults.
func (o BuildOptions) Normalized() BuildOptions {
	if o.Environment == "" {
		o.Environment = EnvDevelopment
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir
	}
	if o.CacheDir == "" {
		o.CacheDir = DefaultCacheDir
	}
	if o.MaxCacheSizeBytes <= 0 {
		o.MaxCacheSizeBytes = DefaultMaxCacheSizeBytes
	}
	return o
}
