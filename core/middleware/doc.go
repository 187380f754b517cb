// Package middleware groups the HTTP middleware of the sync server.
//
//   - auth: rejects requests without the configured API key.
//   - rayid: tags every request with a ray id, echoed in the X-Ray-ID
//     header and attached to request logs.
package middleware
