package reconcile

import "time"

// Config holds the sync defaults shared by every job.
type Config struct {
	// ContinueOnError rolls a failing extent back alone instead of the whole run.
	ContinueOnError bool `mapstructure:"continue_on_error" default:"false"`
	// DryRun computes plans without applying them.
	DryRun bool `mapstructure:"dry_run" default:"false"`
	// OutputSuffix names the geometry output table when none is given.
	OutputSuffix string `mapstructure:"output_suffix" default:"_new_features"`
	// ReportPrefix is the bucket prefix delta reports are written under.
	ReportPrefix string `mapstructure:"report_prefix" default:"reports"`
	// CacheTTLSeconds keeps source indices between server requests. 0 disables.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"0"`
}

// Options returns apply options from the configuration. confirmed comes
// from the caller (prompt, --yes flag or API request).
func (c Config) Options(confirmed bool) Options {
	return Options{
		DryRun:          c.DryRun,
		Confirmed:       confirmed,
		ContinueOnError: c.ContinueOnError,
	}
}

// CacheTTL returns the source cache time-to-live.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
