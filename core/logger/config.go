package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum level logged (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the console encoding (json, console).
	Format string `mapstructure:"format" default:"console"`
	// File additionally writes JSON logs to this path, rotated by size.
	File string `mapstructure:"file" default:""`
	// MaxSizeMB is the size a log file reaches before it is rotated.
	MaxSizeMB int `mapstructure:"max_size_mb" default:"50"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `mapstructure:"max_backups" default:"5"`
}
