//go:build windows

package clip

import "os"

// writeFile falls back to temp file plus rename; renameio has no Windows support.
func writeFile(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
