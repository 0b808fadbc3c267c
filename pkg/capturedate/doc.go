// Package capturedate reads the original capture timestamp (EXIF
// DateTimeOriginal) embedded in a photo.
//
// Readers never fail outright: a Result reports whether the tag was found,
// whether the metadata block exists without the tag, or whether the file's
// metadata could not be read at all, and callers choose a policy per image.
package capturedate
