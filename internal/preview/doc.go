// Package preview decides how a file is shown and renders it for the
// terminal.
//
// Classify maps a MIME type onto a closed set of categories. Render
// highlights text with chroma, formats markdown with glamour and falls back
// to a hex dump for anything the terminal cannot display. FileFields and
// SnapshotFields build the labelled details cards shown next to a preview.
package preview
