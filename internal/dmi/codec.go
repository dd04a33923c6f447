package dmi

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/danieljhkim/iconmerge/internal/sheet"
)

// Decode parses a DMI file into a validated sheet. Every rectangle of every
// state is checked against the bitmap before the sheet is returned.
func Decode(data []byte) (*sheet.Sheet, error) {
	chunks, err := readChunks(data)
	if err != nil {
		return nil, err
	}

	var description string
	found := false
	var texts [][]byte
	for _, c := range chunks {
		if !isText(c.Type) {
			continue
		}
		texts = append(texts, c.Raw)
		if found {
			continue
		}
		keyword, text, err := textOf(c)
		if err != nil {
			if keyword != descriptionKeyword {
				continue
			}
			return nil, err
		}
		if keyword == descriptionKeyword {
			description = text
			found = true
		}
	}
	if !found {
		return nil, ErrNoDescription
	}

	meta, err := ParseMetadata(description)
	if err != nil {
		return nil, err
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}
	grid := toNRGBA(img)

	s, err := sheet.New(grid, meta.IconWidth, meta.IconHeight, meta.States)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMetadata, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadGeometry, err)
	}
	s.Chunks = texts

	return s, nil
}

// toNRGBA returns img as a zero-origin NRGBA grid, converting pixel by
// pixel so non-premultiplied values are preserved exactly.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}

	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return out
}

// Encode writes grid as a PNG and inserts chunks, the raw text chunks of
// the base file, unchanged right after the header.
func Encode(grid *image.NRGBA, chunks [][]byte) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, grid); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeImage, err)
	}
	return spliceChunks(buf.Bytes(), chunks)
}

// EncodeSheet encodes s with its own carried text chunks.
func EncodeSheet(s *sheet.Sheet) ([]byte, error) {
	return Encode(s.Grid, s.Chunks)
}

// Marshal builds a fresh DMI file for s, generating the description from
// the catalogue in storage order. Carried chunks are ignored.
func Marshal(s *sheet.Sheet) ([]byte, error) {
	meta := &Metadata{
		Version:    Version,
		IconWidth:  s.IconWidth,
		IconHeight: s.IconHeight,
	}
	for _, name := range s.Order {
		meta.States = append(meta.States, s.Catalogue[name])
	}

	description, err := ztxtChunk(descriptionKeyword, meta.Format())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeImage, err)
	}
	return Encode(s.Grid, [][]byte{description})
}
