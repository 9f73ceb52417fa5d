package metadata

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GPSCoord is a latitude/longitude pair in decimal degrees.
type GPSCoord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c GPSCoord) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// ParseGPSCoord parses a "lat,lon" string.
func ParseGPSCoord(value string) (GPSCoord, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return GPSCoord{}, fmt.Errorf("GPS coordinate must be \"lat,lon\", got %q", value)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return GPSCoord{}, fmt.Errorf("parse latitude %q: %w", parts[0], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return GPSCoord{}, fmt.Errorf("parse longitude %q: %w", parts[1], err)
	}
	return GPSCoord{Lat: lat, Lon: lon}, nil
}

// GPSHint maps a closed date interval [From, To] to a coordinate. Hints are
// consulted only when no GPS-bearing neighbor is found; the first hint whose
// interval contains the capture time wins, so configuration order matters.
type GPSHint struct {
	From  time.Time
	To    time.Time
	Coord GPSCoord
	Label string
}

// Contains reports whether t falls inside the hint's inclusive interval.
func (h GPSHint) Contains(t time.Time) bool {
	return !t.Before(h.From) && !t.After(h.To)
}
