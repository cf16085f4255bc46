package classify

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
)

// Sniffer inspects the head of a file and reports a kind when its signature
// matches.
type Sniffer func(head []byte) (Kind, bool)

// DefaultSniffers is the signature chain in the order it is tried.
func DefaultSniffers() []Sniffer {
	return []Sniffer{
		sniffPNG,
		sniffJPEG,
		sniffGIF,
		sniffBMP,
		sniffICO,
		sniffTIFF,
		sniffWEBP,
		sniffPDF,
		sniffZIP,
		sniffGZIP,
		sniffPE,
		sniffELF,
		sniffFLAC,
		sniffMP3,
		sniffOGG,
		sniffMP4,
		sniffMKV,
		sniffSVG,
		sniffXML,
		sniffHTML,
		sniffJSON,
	}
}

func prefixSniffer(kind Kind, magic ...string) Sniffer {
	return func(head []byte) (Kind, bool) {
		for _, m := range magic {
			if bytes.HasPrefix(head, []byte(m)) {
				return kind, true
			}
		}
		return "", false
	}
}

var (
	sniffPNG  = prefixSniffer(PNG, "\x89PNG\r\n\x1a\n")
	sniffJPEG = prefixSniffer(JPEG, "\xff\xd8\xff")
	sniffGIF  = prefixSniffer(GIF, "GIF87a", "GIF89a")
	sniffTIFF = prefixSniffer(TIFF, "II*\x00", "MM\x00*")
	sniffZIP  = prefixSniffer(ZIP, "PK\x03\x04", "PK\x05\x06")
	sniffGZIP = prefixSniffer(GZIP, "\x1f\x8b\x08")
	sniffELF  = prefixSniffer(ELF, "\x7fELF")
	sniffFLAC = prefixSniffer(FLAC, "fLaC")
	sniffOGG  = prefixSniffer(OGG, "OggS")
	sniffMKV  = prefixSniffer(MKV, "\x1a\x45\xdf\xa3")
)

func sniffBMP(head []byte) (Kind, bool) {
	if len(head) < 18 || !bytes.HasPrefix(head, []byte("BM")) {
		return "", false
	}
	switch binary.LittleEndian.Uint32(head[14:18]) {
	case 12, 40, 52, 56, 64, 108, 124:
		return BMP, true
	}
	return "", false
}

func sniffICO(head []byte) (Kind, bool) {
	if len(head) < 6 {
		return "", false
	}
	if head[0] != 0 || head[1] != 0 || (head[2] != 1 && head[2] != 2) || head[3] != 0 {
		return "", false
	}
	if binary.LittleEndian.Uint16(head[4:6]) == 0 {
		return "", false
	}
	return ICO, true
}

func sniffWEBP(head []byte) (Kind, bool) {
	if len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "WEBP" {
		return WEBP, true
	}
	return "", false
}

func sniffPDF(head []byte) (Kind, bool) {
	window := head
	if len(window) > 1024 {
		window = window[:1024]
	}
	if bytes.Contains(window, []byte("%PDF-")) {
		return PDF, true
	}
	return "", false
}

func sniffPE(head []byte) (Kind, bool) {
	if len(head) < 0x40 || !bytes.HasPrefix(head, []byte("MZ")) {
		return "", false
	}
	offset := int(binary.LittleEndian.Uint32(head[0x3c:0x40]))
	if offset <= 0 || offset+4 > len(head) {
		return "", false
	}
	if string(head[offset:offset+4]) != "PE\x00\x00" {
		return "", false
	}
	return EXE, true
}

func sniffMP3(head []byte) (Kind, bool) {
	if bytes.HasPrefix(head, []byte("ID3")) {
		return MP3, true
	}
	if len(head) < 4 || head[0] != 0xff || head[1]&0xe0 != 0xe0 {
		return "", false
	}
	version := (head[1] >> 3) & 0x03
	layer := (head[1] >> 1) & 0x03
	bitrate := head[2] >> 4
	rate := (head[2] >> 2) & 0x03
	if version == 1 || layer != 1 || bitrate == 0 || bitrate == 0x0f || rate == 0x03 {
		return "", false
	}
	return MP3, true
}

func sniffMP4(head []byte) (Kind, bool) {
	if len(head) >= 12 && string(head[4:8]) == "ftyp" {
		return MP4, true
	}
	return "", false
}

func textHead(head []byte) []byte {
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	return bytes.TrimLeft(head, " \t\r\n")
}

func sniffSVG(head []byte) (Kind, bool) {
	text := textHead(head)
	if len(text) == 0 || text[0] != '<' {
		return "", false
	}
	window := text
	if len(window) > 4096 {
		window = window[:4096]
	}
	if bytes.Contains(bytes.ToLower(window), []byte("<svg")) {
		return SVG, true
	}
	return "", false
}

func sniffXML(head []byte) (Kind, bool) {
	if bytes.HasPrefix(textHead(head), []byte("<?xml")) {
		return XML, true
	}
	return "", false
}

func sniffHTML(head []byte) (Kind, bool) {
	text := textHead(head)
	if len(text) > 64 {
		text = text[:64]
	}
	lower := bytes.ToLower(text)
	if bytes.HasPrefix(lower, []byte("<!doctype html")) || bytes.HasPrefix(lower, []byte("<html")) {
		return HTML, true
	}
	return "", false
}

func sniffJSON(head []byte) (Kind, bool) {
	text := textHead(head)
	if len(text) == 0 || (text[0] != '{' && text[0] != '[') {
		return "", false
	}
	if json.Valid(text) {
		return JSON, true
	}
	return "", false
}
