package classify

import (
	"bytes"
	"debug/pe"
	"encoding/binary"
	"errors"
	"io"
	"os"

	exif "github.com/dsoprea/go-exif/v3"
)

const overlayProbe = 64 * 1024

// IsAnimated reports whether the file at path is an animated variant of kind.
// Unreadable files are reported as not animated.
func IsAnimated(path string, kind Kind) bool {
	switch kind {
	case PNG:
		return pngAnimated(path)
	case GIF:
		return gifAnimated(path)
	case WEBP:
		return webpAnimated(path)
	default:
		return false
	}
}

// pngAnimated walks chunk headers until acTL or the first IDAT.
func pngAnimated(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	if _, err := f.Seek(8, io.SeekStart); err != nil {
		return false
	}
	var header [8]byte
	for {
		if _, err := io.ReadFull(f, header[:]); err != nil {
			return false
		}
		length := int64(binary.BigEndian.Uint32(header[0:4]))
		switch string(header[4:8]) {
		case "acTL":
			return true
		case "IDAT", "IEND":
			return false
		}
		if _, err := f.Seek(length+4, io.SeekCurrent); err != nil {
			return false
		}
	}
}

func gifAnimated(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	if bytes.Contains(data, []byte("NETSCAPE2.0")) {
		return true
	}
	return bytes.Count(data, []byte{0x21, 0xf9, 0x04}) > 1
}

func webpAnimated(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var head [21]byte
	if _, err := io.ReadFull(f, head[:]); err != nil {
		return false
	}
	return string(head[12:16]) == "VP8X" && head[20]&0x02 != 0
}

var archiveMagic = [][]byte{
	[]byte("PK\x03\x04"),
	[]byte("7z\xbc\xaf\x27\x1c"),
	[]byte("Rar!\x1a\x07"),
	[]byte("MSCF\x00\x00\x00\x00"),
}

// IsSelfExtracting reports whether a PE executable carries an archive payload
// after its last section. Compressing such files breaks the payload offset.
func IsSelfExtracting(path string) bool {
	file, err := pe.Open(path)
	if err != nil {
		return false
	}
	var end int64
	for _, section := range file.Sections {
		if tail := int64(section.Offset) + int64(section.Size); tail > end {
			end = tail
		}
	}
	_ = file.Close()
	if end == 0 {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	overlay := make([]byte, overlayProbe)
	n, err := f.ReadAt(overlay, end)
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	overlay = overlay[:n]
	for _, magic := range archiveMagic {
		if bytes.Contains(overlay, magic) {
			return true
		}
	}
	return false
}

// HasEXIF reports whether the file contains an EXIF block.
func HasEXIF(path string) bool {
	raw, err := exif.SearchFileAndExtractExif(path)
	if err != nil {
		return false
	}
	return len(raw) > 0
}
