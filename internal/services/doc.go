// Package services holds the shared error taxonomy and context plumbing used
// by the composition engines and the job orchestrator.
//
// Engines fail fast and return errors tagged with one of the sentinel markers;
// the orchestrator is the only component that converts a tagged failure into a
// terminal job state instead of propagating it further.
package services
