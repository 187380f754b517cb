// Package integrity checks that the stores a sync run depends on are in
// shape before the run starts.
//
// # Checks Provided
//
//   - Structure: the storage bucket holds the imports/ and reports/ folders.
//   - Schema: a table has the columns a job needs, with compatible types.
//
// # HTTP Endpoints
//
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/schema : Checks ?table= against ?columns=.
package integrity
