// Package manifest reads YAML job manifests for the run command.
//
//	jobs:
//	  - name: statuses
//	    kind: attributes
//	    spec:
//	      master: master
//	      report: report
//	      fields: [status, depth]
//
// Jobs run in file order; each spec is decoded into the request type of
// its kind.
package manifest
