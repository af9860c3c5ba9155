package route

import "strings"

// Crumb is one directory of a breadcrumb trail.
type Crumb struct {
	Name string
	Path string
}

// DecomposePath splits a path into its directories, from the outermost to the
// innermost. Each crumb's Path ends with "/".
//
//	DecomposePath("/home/fred/bob/") = [{home /home/} {fred /home/fred/} {bob /home/fred/bob/}]
func DecomposePath(path string) []Crumb {
	var out []Crumb
	prefix := "/"
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		prefix += part + "/"
		out = append(out, Crumb{Name: part, Path: prefix})
	}
	return out
}

// DirectoryPath returns the directory holding path, with a trailing "/".
// The root is its own parent.
func DirectoryPath(path string) string {
	trimmed := strings.TrimSuffix(path, "/")
	i := strings.LastIndexByte(trimmed, '/')
	if i < 0 {
		return "/"
	}
	return trimmed[:i+1]
}

// FileName returns the last element of path, ignoring a trailing "/".
func FileName(path string) string {
	trimmed := strings.TrimSuffix(path, "/")
	return trimmed[strings.LastIndexByte(trimmed, '/')+1:]
}
