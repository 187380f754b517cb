// Package attributes implements attribute synchronization: the report
// table's copy of selected fields is brought in line with the master
// table, one figure at a time.
//
// For every selected figure the report rows carrying that figure are
// joined with the master on the source and target keys. Each listed field
// whose value differs is overwritten with the master's value. Master rows
// are never appended; figures with no report rows are logged and skipped.
// All overwrites of a run happen in one edit session.
//
// The figure selection "none" runs once over the whole report table.
package attributes
