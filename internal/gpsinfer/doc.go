// Package gpsinfer proposes GPS coordinates for files that lack them.
//
// For each target it copies the coordinate of the nearest-in-time GPS-bearing
// sibling, falling back to time-windowed location hints or a configured
// default. Candidate coordinates (other than hint-derived ones) are checked
// against the directory's GPS centroid; implausible jumps are either skipped
// or downgraded to low confidence depending on configuration.
package gpsinfer
