package config

import (
	"errors"
	"fmt"

	"exifheal/internal/metadata"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateGPS(); err != nil {
		return err
	}
	if err := c.validateApply(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScan() error {
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must include at least one extension")
	}
	if c.Scan.MaxTimeGap <= 0 {
		return errors.New("scan.max_time_gap must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateGPS() error {
	if c.GPS.MaxDistanceKM <= 0 {
		return errors.New("gps.max_distance_km must be positive")
	}
	if c.GPS.DefaultCoordinate != "" {
		if _, err := metadata.ParseGPSCoord(c.GPS.DefaultCoordinate); err != nil {
			return fmt.Errorf("gps.default_coordinate: %w", err)
		}
	}
	return nil
}

func (c *Config) validateApply() error {
	if _, err := metadata.ParseConfidence(c.Apply.MinTimeConfidence); err != nil {
		return fmt.Errorf("apply.min_time_confidence: %w", err)
	}
	if _, err := metadata.ParseConfidence(c.Apply.MinGPSConfidence); err != nil {
		return fmt.Errorf("apply.min_gps_confidence: %w", err)
	}
	if c.Apply.BatchSize <= 0 {
		return errors.New("apply.batch_size must be positive")
	}
	return nil
}

// MinTimeThreshold returns the parsed time confidence threshold.
func (c *Config) MinTimeThreshold() metadata.Confidence {
	conf, err := metadata.ParseConfidence(c.Apply.MinTimeConfidence)
	if err != nil {
		return metadata.ConfidenceMed
	}
	return conf
}

// MinGPSThreshold returns the parsed GPS confidence threshold.
func (c *Config) MinGPSThreshold() metadata.Confidence {
	conf, err := metadata.ParseConfidence(c.Apply.MinGPSConfidence)
	if err != nil {
		return metadata.ConfidenceMed
	}
	return conf
}

// DefaultCoord returns the parsed default coordinate, or nil when unset.
func (c *Config) DefaultCoord() *metadata.GPSCoord {
	if c.GPS.DefaultCoordinate == "" {
		return nil
	}
	coord, err := metadata.ParseGPSCoord(c.GPS.DefaultCoordinate)
	if err != nil {
		return nil
	}
	return &coord
}
