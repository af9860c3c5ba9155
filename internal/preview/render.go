package preview

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

const (
	// HexDumpBytes is how much of a binary file is shown as a hex dump.
	HexDumpBytes = 256

	defaultStyle = "monokai"
	defaultWidth = 80
	maxWidth     = 120
)

// Options tunes rendering.
type Options struct {
	Width int
	// Style is a chroma style name; an unknown name falls back to the default.
	Style string
	// Plain disables ANSI colouring.
	Plain bool
}

// Render turns file content into terminal text. Text files are syntax
// highlighted (markdown goes through glamour); everything else gets a short
// notice followed by a hex dump of the first bytes.
func Render(content []byte, name, mimeType string, opts Options) (string, error) {
	cat := Classify(mimeType)
	if cat == Unsupported && LooksLikeText(content) {
		cat = Text
	}
	if cat != Text {
		return renderBinary(content, cat, mimeType), nil
	}

	text := string(content)
	if opts.Plain {
		return text, nil
	}
	if isMarkdown(name, mimeType) {
		out, err := renderMarkdown(text, clampWidth(opts.Width))
		if err == nil {
			return out, nil
		}
	}
	return highlight(text, name, mimeType, opts.Style)
}

func renderBinary(content []byte, cat Category, mimeType string) string {
	var b strings.Builder
	if mimeType == "" {
		mimeType = "unknown type"
	}
	fmt.Fprintf(&b, "No inline preview for %s content (%s).\n", cat, mimeType)
	if len(content) == 0 {
		return b.String()
	}
	b.WriteString("\n")
	head := content
	if len(head) > HexDumpBytes {
		head = head[:HexDumpBytes]
	}
	b.WriteString(hex.Dump(head))
	if len(content) > HexDumpBytes {
		fmt.Fprintf(&b, "... %d more bytes\n", len(content)-HexDumpBytes)
	}
	return b.String()
}

func highlight(text, name, mimeType, styleName string) (string, error) {
	lexer := lexers.Match(filepath.Base(name))
	if lexer == nil && mimeType != "" {
		lexer = lexers.MatchMimeType(mimeType)
	}
	if lexer == nil {
		lexer = lexers.Analyse(text)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	if styleName == "" {
		styleName = defaultStyle
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	it, err := lexer.Tokenise(nil, text)
	if err != nil {
		return "", fmt.Errorf("tokenise %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, it); err != nil {
		return "", fmt.Errorf("format %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderMarkdown(text string, width int) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(glamourstyles.DarkStyleConfig),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(text)
}

func isMarkdown(name, mimeType string) bool {
	if strings.HasPrefix(strings.ToLower(mimeType), "text/markdown") {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// LooksLikeText reports whether content is valid UTF-8 without NUL bytes.
// Only the first 4 KiB are inspected.
func LooksLikeText(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	sample := content
	if len(sample) > 4096 {
		sample = sample[:4096]
		// The cut may split a multi-byte rune.
		for i := 0; i < utf8.UTFMax-1 && !utf8.Valid(sample); i++ {
			sample = sample[:len(sample)-1]
		}
	}
	return utf8.Valid(sample) && !bytes.ContainsRune(sample, 0)
}

func clampWidth(w int) int {
	switch {
	case w <= 0:
		return defaultWidth
	case w > maxWidth:
		return maxWidth
	}
	return w
}
