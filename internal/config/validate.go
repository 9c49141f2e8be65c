package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateSegmentation(); err != nil {
		return err
	}
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMedia() error {
	if c.Media.FrameWidth <= 0 || c.Media.FrameHeight <= 0 {
		return errors.New("media.frame_width and media.frame_height must be positive")
	}
	if c.Media.FrameRate <= 0 {
		return errors.New("media.frame_rate must be positive")
	}
	return nil
}

func (c *Config) validateSegmentation() error {
	if c.Segmentation.MinSilenceMs <= 0 {
		return errors.New("segmentation.min_silence_ms must be positive")
	}
	if c.Segmentation.NoiseDb >= 0 {
		return errors.New("segmentation.noise_db must be negative decibels")
	}
	if c.Segmentation.MaxParts < 2 {
		return fmt.Errorf("segmentation.max_parts must be at least 2, got %d", c.Segmentation.MaxParts)
	}
	if c.Segmentation.MinSegmentMs <= 0 {
		return errors.New("segmentation.min_segment_ms must be positive")
	}
	return nil
}

func (c *Config) validateAlignment() error {
	if c.Alignment.WordsPerLine <= 0 {
		return errors.New("alignment.words_per_line must be positive")
	}
	if c.Alignment.FontSize <= 0 {
		return errors.New("alignment.font_size must be positive")
	}
	if c.Alignment.StrokeWidth < 0 {
		return errors.New("alignment.stroke_width must not be negative")
	}
	if c.Alignment.Padding < 0 {
		return errors.New("alignment.padding must not be negative")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.FetchTimeoutSeconds <= 0 {
		return errors.New("workflow.fetch_timeout_seconds must be positive")
	}
	if c.Workflow.MaxSourceBytes <= 0 {
		return errors.New("workflow.max_source_bytes must be positive")
	}
	return nil
}
