// Package gdb is the geodatabase layer the sync jobs run against.
//
// A geodatabase is a SQL database opened by core/database. Every table is
// an attribute table; a table that also carries a WKT shape column (see
// database.Config.GeometryColumn) is a feature class. Store implements the
// read side (Fields, Select, Distinct) and opens EditSessions, the
// transactional write side used by the reconcile Patcher.
//
// Spatial relations are evaluated in memory with github.com/paulmach/orb:
// Features parses shapes and Intersects tests two shapes on the plane,
// boundaries included. Coordinates are taken as stored; no projection is
// applied.
package gdb
