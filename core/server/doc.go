// Package server holds the HTTP server configuration used by the start
// command (listen port, API key, request body limit) and the JSON error
// mapping shared by feature handlers.
package server
