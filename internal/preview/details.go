package preview

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/five82/plakview/internal/plakar"
)

// Field is one labelled line of a details card.
type Field struct {
	Label string
	Value string
}

// FileFields describes a file entry for the details card.
func FileFields(e plakar.PathEntry, now time.Time) []Field {
	fields := []Field{
		{"Name", e.Name},
		{"Path", e.Path},
		{"Content Type", orUnknown(e.MimeType)},
		{"Category", Classify(e.MimeType).String()},
		{"Size", sizeString(e)},
		{"Mode", e.Mode},
		{"Owner", e.UID + ":" + e.GID},
		{"Modified", when(e.ModificationTime, e.ParsedModificationTime(), now)},
	}
	if e.Checksum != "" {
		fields = append(fields, Field{"Checksum", e.Checksum})
	}
	if e.Device != "" || e.Inode != "" {
		fields = append(fields, Field{"Device / Inode", orUnknown(e.Device) + " / " + orUnknown(e.Inode)})
	}
	if e.RawPath != "" {
		fields = append(fields, Field{"Raw", e.RawPath})
	}
	return fields
}

// SnapshotFields describes a snapshot for the details header.
func SnapshotFields(s plakar.SnapshotSummary, now time.Time) []Field {
	fields := []Field{
		{"Snapshot", s.ID},
		{"Short ID", s.DisplayShortID()},
		{"Origin", s.Username + "@" + s.Hostname},
		{"Root", s.RootPath},
		{"Date", when(s.Date, s.ParsedDate(), now)},
		{"Size", s.Size},
	}
	if s.OS != "" {
		fields = append(fields, Field{"OS", s.OS})
	}
	if len(s.Tags) > 0 {
		fields = append(fields, Field{"Tags", strings.Join(s.Tags, ", ")})
	}
	return fields
}

// Bytes formats a byte count for display.
func Bytes(n uint64) string {
	return humanize.IBytes(n)
}

func sizeString(e plakar.PathEntry) string {
	if e.ByteSize > 0 {
		return humanize.IBytes(e.ByteSize) + " (" + humanize.Comma(int64(e.ByteSize)) + " bytes)"
	}
	if e.Size != "" {
		return e.Size
	}
	return "0 B"
}

// when renders a timestamp with a relative hint; unparsable values are shown
// as received.
func when(raw string, t, now time.Time) string {
	if t.IsZero() {
		return orUnknown(raw)
	}
	return t.Format("2006-01-02 15:04:05") + " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
