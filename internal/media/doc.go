// Package media renders composed video output. The Engine interface keeps
// the orchestration layer testable; FFmpeg is the production implementation
// that shells out to ffmpeg and ffprobe.
package media
