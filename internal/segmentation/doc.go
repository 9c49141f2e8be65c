// Package segmentation computes silence-aware cut points for audio files.
//
// The pure Split function places boundaries near silence midpoints, falling
// back to uniform division; the Detector shells out to ffmpeg silencedetect
// and parses its log output; the Service combines both with the media engine
// to cut real segment files.
package segmentation
