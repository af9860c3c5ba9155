package preview

import (
	"mime"
	"strings"
)

// Category is the closed set of preview kinds a file can fall into.
type Category int

const (
	Unsupported Category = iota
	Text
	Image
	Video
	Audio
	PDF
)

func (c Category) String() string {
	switch c {
	case Text:
		return "text"
	case Image:
		return "image"
	case Video:
		return "video"
	case Audio:
		return "audio"
	case PDF:
		return "pdf"
	}
	return "unsupported"
}

// textApplications are application/* types whose content is readable text.
var textApplications = map[string]bool{
	"application/json":       true,
	"application/xml":        true,
	"application/javascript": true,
	"application/x-sh":       true,
	"application/x-yaml":     true,
	"application/yaml":       true,
	"application/toml":       true,
	"application/sql":        true,
}

// Classify maps a MIME type to its preview category. Parameters such as
// charset are ignored; unknown or empty types are Unsupported.
func Classify(mimeType string) Category {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	major, _, _ := strings.Cut(mt, "/")

	switch {
	case major == "text":
		return Text
	case major == "image":
		return Image
	case major == "video":
		return Video
	case major == "audio":
		return Audio
	case mt == "application/pdf":
		return PDF
	case textApplications[mt], strings.HasSuffix(mt, "+json"), strings.HasSuffix(mt, "+xml"):
		return Text
	}
	return Unsupported
}
