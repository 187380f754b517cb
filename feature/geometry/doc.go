// Package geometry detects features of a sitewide parent table that are
// missing from a figure's report table.
//
// Detection runs in three parts per figure:
//
//  1. Parent features are joined to the figure's extent polygons. A
//     feature inside several figures is kept once per figure. Features
//     whose delete field holds one of the delete values are dropped.
//  2. The joined features are restricted to the figure's polygons in the
//     boundary table, which defaults to the extent table.
//  3. Features that touch no report feature of the figure are new.
//
// Applying the plan recreates the output table with the report table's
// columns and appends every new feature in one edit session.
package geometry
