// Package alignment reconciles user scripts against recognized speech
// timestamps for karaoke-style subtitle timing, groups the aligned words
// into display lines and overlay windows, and renders SRT output.
package alignment
