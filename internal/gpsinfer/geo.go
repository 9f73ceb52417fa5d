package gpsinfer

import (
	"math"

	"exifheal/internal/metadata"
)

// earthRadiusKM is the mean Earth radius used by the haversine formula.
const earthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance between two coordinates in
// kilometers.
func HaversineKM(a, b metadata.GPSCoord) float64 {
	lat1 := a.Lat * math.Pi / 180
	lon1 := a.Lon * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lon2 := b.Lon * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(h))
}

// Centroid returns the arithmetic mean coordinate of all GPS-bearing records,
// or nil when none carry GPS. It is computed before inference so inferred
// coordinates cannot drag the reference point.
func Centroid(records []*metadata.FileRecord) *metadata.GPSCoord {
	var sumLat, sumLon float64
	count := 0
	for _, record := range records {
		if record.GPS == nil {
			continue
		}
		sumLat += record.GPS.Lat
		sumLon += record.GPS.Lon
		count++
	}
	if count == 0 {
		return nil
	}
	return &metadata.GPSCoord{Lat: sumLat / float64(count), Lon: sumLon / float64(count)}
}
