// Package utils provides value conversion helpers shared by the geodatabase
// layer and the input-file readers. Driver values (int64, []byte, time.Time)
// and file values (text) are both funnelled through these functions so that
// comparisons happen on one canonical representation.
package utils
