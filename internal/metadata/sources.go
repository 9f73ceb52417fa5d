package metadata

// TimeSource identifies how a capture time was determined.
type TimeSource string

const (
	TimeSourceExifPrimary    TimeSource = "exif_primary"
	TimeSourceExifCreate     TimeSource = "exif_create"
	TimeSourceExifModify     TimeSource = "exif_modify"
	TimeSourceXMPCreated     TimeSource = "xmp_created"
	TimeSourceFilename       TimeSource = "filename"
	TimeSourceNeighborInterp TimeSource = "neighbor_interpolated"
	TimeSourceNeighborCopy   TimeSource = "neighbor_copied"
	TimeSourceFileMtime      TimeSource = "file_mtime"
)

// GPSSource identifies how GPS coordinates were determined.
type GPSSource string

const (
	GPSSourceExif         GPSSource = "exif"
	GPSSourceNeighborCopy GPSSource = "neighbor_copied"
	GPSSourceDefaultHint  GPSSource = "default_hint"
	GPSSourceNone         GPSSource = "none"
)

// exifTimeSources are the tag-backed sources trusted as interpolation anchors.
var exifTimeSources = map[TimeSource]struct{}{
	TimeSourceExifPrimary: {},
	TimeSourceExifCreate:  {},
	TimeSourceExifModify:  {},
	TimeSourceXMPCreated:  {},
}

// IsExifTimeSource reports whether the source is one of the EXIF/XMP tag
// sources, as opposed to filename parsing, neighbor inference, or mtime.
func IsExifTimeSource(source TimeSource) bool {
	_, ok := exifTimeSources[source]
	return ok
}
