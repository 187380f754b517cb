// Package loader registers the sync features with the HTTP server.
//
// Each feature implements Feature: a name, an enabled switch and a Load
// hook that mounts its routes. The Manager keeps features in registration
// order and LoadAll mounts the enabled ones.
package loader
