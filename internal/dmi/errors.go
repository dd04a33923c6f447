package dmi

import "errors"

var (
	// ErrNotPNG indicates the data does not start with a PNG signature.
	ErrNotPNG = errors.New("not a PNG file")
	// ErrTruncated indicates the chunk stream ends early.
	ErrTruncated = errors.New("truncated PNG chunk stream")
	// ErrChecksum indicates a chunk CRC mismatch.
	ErrChecksum = errors.New("PNG chunk checksum mismatch")
	// ErrDecodeImage indicates the pixel data could not be decoded.
	ErrDecodeImage = errors.New("decode image failed")
	// ErrEncodeImage indicates the pixel data could not be encoded.
	ErrEncodeImage = errors.New("encode image failed")
	// ErrNoDescription indicates the PNG carries no DMI description chunk.
	ErrNoDescription = errors.New("no DMI description")
	// ErrBadText indicates a malformed text chunk.
	ErrBadText = errors.New("malformed text chunk")
	// ErrBadMetadata indicates an unparseable DMI description.
	ErrBadMetadata = errors.New("malformed DMI metadata")
	// ErrBadGeometry indicates states that do not fit the bitmap.
	ErrBadGeometry = errors.New("DMI states do not fit the bitmap")
)
