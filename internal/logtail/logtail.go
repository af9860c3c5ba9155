// Package logtail reads the end of the plakview log file and decodes its
// JSON lines for the logs command. The TUI owns the terminal while it runs,
// so this is where its warnings end up.
package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

// Tail returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line; a missing file has none.
func Tail(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count, idx := 0, 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one decoded log line.
type Entry struct {
	Time    time.Time
	Level   zapcore.Level
	Logger  string
	Message string
	Fields  map[string]any
	// Raw holds lines that are not JSON log records; the other fields are
	// then empty.
	Raw string
}

// reserved are the keys the JSON encoder writes for every record.
var reserved = map[string]bool{
	"level": true, "ts": true, "logger": true, "msg": true, "caller": true, "stacktrace": true,
}

// Parse decodes a line written by the JSON encoder.
func Parse(line string) Entry {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return Entry{Raw: line}
	}
	levelText, _ := record["level"].(string)
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(levelText)); err != nil {
		return Entry{Raw: line}
	}

	e := Entry{Level: level}
	e.Logger, _ = record["logger"].(string)
	e.Message, _ = record["msg"].(string)
	switch ts := record["ts"].(type) {
	case string:
		e.Time, _ = time.Parse("2006-01-02T15:04:05.000Z0700", ts)
	case float64:
		e.Time = time.Unix(0, int64(ts*float64(time.Second)))
	}
	for k, v := range record {
		if reserved[k] {
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string]any)
		}
		e.Fields[k] = v
	}
	return e
}

// Enabled reports whether the entry is at or above min. Raw lines always are.
func (e Entry) Enabled(min zapcore.Level) bool {
	return e.Raw != "" || e.Level >= min
}

// Format renders the entry on one line with its fields sorted by key.
func (e Entry) Format() string {
	if e.Raw != "" {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s ", e.Level.CapitalString())
	if e.Logger != "" {
		b.WriteString(e.Logger)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
	}
	return b.String()
}
