package classify

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// HeadSize is how many leading bytes callers should hand to Classify.
const HeadSize = 64 * 1024

// Classifier runs a sniffer chain with MIME and extension fallbacks.
type Classifier struct {
	sniffers []Sniffer
	useMIME  bool
}

// New returns a classifier using the default sniffer chain.
func New() *Classifier {
	return &Classifier{sniffers: DefaultSniffers(), useMIME: true}
}

// NewWithSniffers returns a classifier that only consults the given sniffers
// before the extension fallback.
func NewWithSniffers(sniffers ...Sniffer) *Classifier {
	return &Classifier{sniffers: append([]Sniffer(nil), sniffers...)}
}

var defaultClassifier = New()

// Classify tags head using the default classifier.
func Classify(head []byte, path string) []Kind {
	return defaultClassifier.Classify(head, path)
}

// Classify returns the ordered, de-duplicated kinds for a file whose leading
// bytes are head. The result is never empty.
func (c *Classifier) Classify(head []byte, path string) []Kind {
	var tags tagSet
	for _, sniff := range c.sniffers {
		if kind, ok := sniff(head); ok {
			if kind == ZIP {
				if container, ok := zipContainer(path); ok {
					tags.add(container)
				}
			}
			tags.add(kind)
		}
	}
	if tags.empty() && c.useMIME && len(head) > 0 {
		if kind, ok := fromMIME(head); ok {
			tags.add(kind)
		}
	}
	if tags.empty() {
		tags.add(extensionTag(path))
	}
	return tags.kinds
}

func zipContainer(path string) (Kind, bool) {
	kind, ok := FromExtension(path)
	if !ok {
		return "", false
	}
	switch kind {
	case Office, EPUB, APK:
		return kind, true
	}
	return "", false
}

func fromMIME(head []byte) (Kind, bool) {
	detected := mimetype.Detect(head)
	for m := detected; m != nil; m = m.Parent() {
		ext := strings.TrimPrefix(m.Extension(), ".")
		if ext == "" || ext == "txt" || ext == "bin" {
			continue
		}
		if kind, ok := FromExtension("x." + ext); ok {
			return kind, true
		}
	}
	return "", false
}

type tagSet struct {
	kinds []Kind
}

func (s *tagSet) add(kind Kind) {
	for _, existing := range s.kinds {
		if existing == kind {
			return
		}
	}
	s.kinds = append(s.kinds, kind)
}

func (s *tagSet) empty() bool { return len(s.kinds) == 0 }

// Describe renders kinds as a comma separated list.
func Describe(kinds []Kind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}
