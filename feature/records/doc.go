// Package records appends the rows of a delimited file that a table does
// not hold yet.
//
// Every writable column of the table must appear in the file header;
// spaces in header names count as underscores. Cells must parse as their
// column's type. Rows are keyed on the request's key fields, or on every
// writable column when none are given, and rows whose key is absent from
// the table are appended in one edit session. When storage is enabled the
// new rows are also uploaded as a CSV report.
package records
