// Package speech adapts external speech recognition tooling. The WhisperX
// transcriber shells out via uvx and normalizes word timings into
// milliseconds for the alignment engine.
package speech
