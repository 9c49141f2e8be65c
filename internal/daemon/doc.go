// Package daemon composes the clipforge runtime: configuration, the job
// orchestrator, the synchronous split and karaoke engines, and the HTTP API,
// all behind a single lifecycle with flock-based locking to prevent multiple
// instances from sharing a workspace.
package daemon
