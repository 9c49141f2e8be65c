package daemon

// Wire types for the HTTP API.

type statusResponse struct {
	Running      bool   `json:"running"`
	PID          int    `json:"pid"`
	LockFilePath string `json:"lock_file"`
	CatalogPath  string `json:"catalog_path"`
	ActiveJobs   int    `json:"active_jobs"`
	TerminalJobs int    `json:"terminal_jobs"`
}

type overlayRequest struct {
	Text        string `json:"text"`
	StartMs     int64  `json:"start_ms"`
	EndMs       int64  `json:"end_ms"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Auto        bool   `json:"auto"`
	Align       string `json:"align"`
	FontSize    int    `json:"font_size"`
	FontColor   string `json:"font_color"`
	StrokeColor string `json:"stroke_color"`
	StrokeWidth int    `json:"stroke_width"`
	Background  string `json:"background"`
	Padding     int    `json:"padding"`
}

type submitJobRequest struct {
	Kind     string           `json:"kind"`
	Images   []string         `json:"images"`
	Clips    []string         `json:"clips"`
	Audio    string           `json:"audio"`
	Overlays []overlayRequest `json:"overlays"`
}

type submitJobResponse struct {
	JobID string `json:"job_id"`
}

type jobSourceView struct {
	URL       string `json:"url"`
	Kind      string `json:"kind"`
	LocalPath string `json:"local_path,omitempty"`
}

type jobResultView struct {
	OutputFile string `json:"output_file"`
	DurationMs int64  `json:"duration_ms"`
}

type jobResponse struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Status    string          `json:"status"`
	Progress  int             `json:"progress"`
	Message   string          `json:"message"`
	Sources   []jobSourceView `json:"sources"`
	Result    *jobResultView  `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

type splitRequest struct {
	File  string `json:"file"`
	URL   string `json:"url"`
	Parts int    `json:"parts"`
}

type splitResponse struct {
	DurationMs int64    `json:"duration_ms"`
	Boundaries []int64  `json:"boundaries"`
	Segments   []string `json:"segments"`
}

type karaokeRequest struct {
	File   string `json:"file"`
	URL    string `json:"url"`
	Script string `json:"script"`
	Mode   string `json:"mode"`
}

type alignedWordView struct {
	Text    string `json:"text"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
}

type overlayWindowView struct {
	Text    string `json:"text"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
}

type karaokeResponse struct {
	Mode     string              `json:"mode"`
	Words    []alignedWordView   `json:"words"`
	Overlays []overlayWindowView `json:"overlays"`
	SRTPath  string              `json:"srt_path"`
}

type artifactView struct {
	ID         int64  `json:"id"`
	JobID      string `json:"job_id"`
	Kind       string `json:"kind"`
	Path       string `json:"path"`
	DurationMs int64  `json:"duration_ms"`
	CreatedAt  string `json:"created_at"`
}

type outputsResponse struct {
	Artifacts []artifactView `json:"artifacts"`
}
