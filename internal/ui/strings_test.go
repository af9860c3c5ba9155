package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("  short ", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "a", truncate("abc", 1))
	assert.Equal(t, "abc", truncate("abc", 0))
	assert.Equal(t, "héll…", truncate("héllo wörld", 5))
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"/home/fred/Documents/report.txt", 40, "/home/fred/Documents/report.txt"},
		{"/home/fred/Documents/report.txt", 22, "…/Documents/report.txt"},
		{"/home/fred/Documents/report.txt", 12, "…/report.txt"},
		{"/home/fred/Documents/report.txt", 6, "…t.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncatePath(tt.in, tt.limit), "%q at %d", tt.in, tt.limit)
	}
}

func TestPadding(t *testing.T) {
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "   ab", padLeft("ab", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
	assert.Equal(t, "→ ", padRight("→", 2))
}
