// Package config loads application settings from the environment.
//
// A .env file is read first (godotenv), then viper maps environment
// variables onto nested keys: DATABASE_DRIVER sets database.driver,
// SYNC_CONTINUE_ON_ERROR sets sync.continue_on_error. Defaults come from
// the `default` struct tags of each section:
//   - Server: HTTP port, API key, body limit
//   - Database: driver (mysql or sqlite), connection and geometry column
//   - Storage: MinIO bucket for imports and reports
//   - Log: level, format and optional rotating file
//   - Sync: dry run, continue on error, output suffix, report prefix, cache TTL
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
package config
