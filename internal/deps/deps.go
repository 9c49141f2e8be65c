// Package deps verifies the external tools clipforge shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"clipforge/internal/config"
)

// Requirement defines an external tool clipforge relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of one requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the tools the pipeline needs: ffmpeg and ffprobe for
// every media operation, uvx only when karaoke transcription is used.
func Requirements(media config.Media) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     media.FFmpegBinary,
			Description: "Composition, silence detection, and audio extraction",
		},
		{
			Name:        "FFprobe",
			Command:     media.FFprobeBinary,
			Description: "Duration and stream metadata probing",
		},
		{
			Name:        "uvx",
			Command:     "uvx",
			Description: "Launches WhisperX for karaoke transcription",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements against PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if resolved, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		} else {
			status.Command = resolved
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional tools.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
