package classify

import (
	"path/filepath"
	"strings"
)

// Kind is a classifier-assigned content label used to select stages.
type Kind string

const (
	PNG     Kind = "png"
	JPEG    Kind = "jpeg"
	GIF     Kind = "gif"
	BMP     Kind = "bmp"
	ICO     Kind = "ico"
	TIFF    Kind = "tiff"
	WEBP    Kind = "webp"
	PDF     Kind = "pdf"
	Office  Kind = "office"
	EPUB    Kind = "epub"
	APK     Kind = "apk"
	ZIP     Kind = "zip"
	GZIP    Kind = "gzip"
	EXE     Kind = "exe"
	ELF     Kind = "elf"
	FLAC    Kind = "flac"
	MP3     Kind = "mp3"
	OGG     Kind = "ogg"
	MP4     Kind = "mp4"
	MKV     Kind = "mkv"
	SVG     Kind = "svg"
	XML     Kind = "xml"
	HTML    Kind = "html"
	JSON    Kind = "json"
	Unknown Kind = "unknown"
)

func (k Kind) String() string { return string(k) }

var canonicalExt = map[Kind]string{
	PNG:    ".png",
	JPEG:   ".jpg",
	GIF:    ".gif",
	BMP:    ".bmp",
	ICO:    ".ico",
	TIFF:   ".tif",
	WEBP:   ".webp",
	PDF:    ".pdf",
	Office: ".docx",
	EPUB:   ".epub",
	APK:    ".apk",
	ZIP:    ".zip",
	GZIP:   ".gz",
	EXE:    ".exe",
	ELF:    ".elf",
	FLAC:   ".flac",
	MP3:    ".mp3",
	OGG:    ".ogg",
	MP4:    ".mp4",
	MKV:    ".mkv",
	SVG:    ".svg",
	XML:    ".xml",
	HTML:   ".html",
	JSON:   ".json",
}

var extAliases = map[string]Kind{
	"png":   PNG,
	"apng":  PNG,
	"jpg":   JPEG,
	"jpeg":  JPEG,
	"jpe":   JPEG,
	"jfif":  JPEG,
	"gif":   GIF,
	"bmp":   BMP,
	"dib":   BMP,
	"ico":   ICO,
	"cur":   ICO,
	"tif":   TIFF,
	"tiff":  TIFF,
	"webp":  WEBP,
	"pdf":   PDF,
	"docx":  Office,
	"xlsx":  Office,
	"pptx":  Office,
	"odt":   Office,
	"ods":   Office,
	"odp":   Office,
	"odg":   Office,
	"epub":  EPUB,
	"apk":   APK,
	"jar":   APK,
	"zip":   ZIP,
	"gz":    GZIP,
	"tgz":   GZIP,
	"svgz":  GZIP,
	"exe":   EXE,
	"dll":   EXE,
	"so":    ELF,
	"elf":   ELF,
	"flac":  FLAC,
	"mp3":   MP3,
	"ogg":   OGG,
	"oga":   OGG,
	"mp4":   MP4,
	"m4a":   MP4,
	"m4v":   MP4,
	"mov":   MP4,
	"mkv":   MKV,
	"mka":   MKV,
	"webm":  MKV,
	"svg":   SVG,
	"xml":   XML,
	"html":  HTML,
	"htm":   HTML,
	"xhtml": HTML,
	"json":  JSON,
}

// Extension returns the canonical extension, including the dot, for kind.
// Kinds without a canonical extension yield "."+kind.
func Extension(kind Kind) string {
	if ext, ok := canonicalExt[kind]; ok {
		return ext
	}
	if kind == "" || kind == Unknown {
		return ""
	}
	return "." + string(kind)
}

// FromExtension maps a path's extension to a known kind.
func FromExtension(path string) (Kind, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	kind, ok := extAliases[ext]
	return kind, ok
}

// extensionTag is the final fallback: the known kind for the extension, the
// bare lowercase extension otherwise, or Unknown when the path has none.
func extensionTag(path string) Kind {
	if kind, ok := FromExtension(path); ok {
		return kind
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return Unknown
	}
	return Kind(ext)
}
