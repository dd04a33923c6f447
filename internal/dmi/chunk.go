package dmi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zlib"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Chunk type names used by the codec.
const (
	chunkIHDR = "IHDR"
	chunkZTXt = "zTXt"
	chunkTEXt = "tEXt"
	chunkITXt = "iTXt"
)

// descriptionKeyword is the text keyword holding DMI metadata.
const descriptionKeyword = "Description"

// chunk is one PNG chunk. Raw holds the complete on-disk bytes
// (length, type, data and CRC) so it can be written back verbatim.
type chunk struct {
	Type string
	Data []byte
	Raw  []byte
}

// readChunks splits a PNG byte stream into chunks, verifying CRCs.
func readChunks(data []byte) ([]chunk, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, ErrNotPNG
	}

	var chunks []chunk
	rest := data[len(pngSignature):]
	for len(rest) > 0 {
		if len(rest) < 12 {
			return nil, fmt.Errorf("%w: %d trailing bytes", ErrTruncated, len(rest))
		}
		length := binary.BigEndian.Uint32(rest[:4])
		if uint64(length)+12 > uint64(len(rest)) {
			return nil, fmt.Errorf("%w: chunk %q wants %d bytes", ErrTruncated, rest[4:8], length)
		}
		end := 12 + int(length)
		c := chunk{
			Type: string(rest[4:8]),
			Data: rest[8 : 8+length],
			Raw:  rest[:end],
		}
		want := binary.BigEndian.Uint32(rest[8+length : end])
		if got := crc32.ChecksumIEEE(rest[4 : 8+length]); got != want {
			return nil, fmt.Errorf("%w: chunk %q", ErrChecksum, c.Type)
		}
		chunks = append(chunks, c)
		rest = rest[end:]
		if c.Type == "IEND" {
			break
		}
	}

	return chunks, nil
}

// isText reports whether the chunk type is a textual ancillary chunk.
func isText(chunkType string) bool {
	return chunkType == chunkZTXt || chunkType == chunkTEXt || chunkType == chunkITXt
}

// buildChunk serializes one chunk with its length and CRC.
func buildChunk(chunkType string, data []byte) []byte {
	out := make([]byte, 0, len(data)+12)
	out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
	out = append(out, chunkType...)
	out = append(out, data...)
	crc := crc32.ChecksumIEEE(out[4:])
	return binary.BigEndian.AppendUint32(out, crc)
}

// textOf returns the keyword and decoded text of a text chunk. The keyword
// is still returned when only the payload is malformed.
func textOf(c chunk) (keyword, text string, err error) {
	kw, rest, ok := bytes.Cut(c.Data, []byte{0})
	if !ok {
		return "", "", fmt.Errorf("%w: %s without keyword terminator", ErrBadText, c.Type)
	}

	switch c.Type {
	case chunkTEXt:
		return string(kw), string(rest), nil
	case chunkZTXt:
		if len(rest) < 1 || rest[0] != 0 {
			return string(kw), "", fmt.Errorf("%w: zTXt compression method", ErrBadText)
		}
		plain, err := inflate(rest[1:])
		if err != nil {
			return string(kw), "", err
		}
		return string(kw), string(plain), nil
	case chunkITXt:
		if len(rest) < 2 {
			return string(kw), "", fmt.Errorf("%w: short iTXt header", ErrBadText)
		}
		compressed := rest[0] == 1
		fields := bytes.SplitN(rest[2:], []byte{0}, 3)
		if len(fields) != 3 {
			return string(kw), "", fmt.Errorf("%w: iTXt fields", ErrBadText)
		}
		body := fields[2]
		if compressed {
			plain, err := inflate(body)
			if err != nil {
				return string(kw), "", err
			}
			body = plain
		}
		return string(kw), string(body), nil
	default:
		return string(kw), "", fmt.Errorf("%w: %s is not a text chunk", ErrBadText, c.Type)
	}
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadText, err)
	}
	defer func() { _ = r.Close() }()

	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadText, err)
	}
	return plain, nil
}

// ztxtChunk builds a compressed text chunk.
func ztxtChunk(keyword, text string) ([]byte, error) {
	var body bytes.Buffer
	body.WriteString(keyword)
	body.WriteByte(0)
	body.WriteByte(0) // compression method: deflate

	w, err := zlib.NewWriterLevel(&body, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte(text)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buildChunk(chunkZTXt, body.Bytes()), nil
}

// spliceChunks inserts raw chunks right after IHDR in an encoded PNG.
func spliceChunks(png []byte, extra [][]byte) ([]byte, error) {
	if len(extra) == 0 {
		return png, nil
	}
	chunks, err := readChunks(png)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 || chunks[0].Type != chunkIHDR {
		return nil, fmt.Errorf("%w: IHDR is not the first chunk", ErrEncodeImage)
	}

	var out bytes.Buffer
	out.Grow(len(png) + len(extra)*64)
	out.Write(pngSignature)
	out.Write(chunks[0].Raw)
	for _, raw := range extra {
		out.Write(raw)
	}
	for _, c := range chunks[1:] {
		out.Write(c.Raw)
	}
	return out.Bytes(), nil
}
