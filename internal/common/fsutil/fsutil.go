package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// ExpandHome replaces a leading "~" or "~/" with the current user's home
// directory. Paths naming another user ("~bob/models") come back unchanged;
// per-user expansion is a shell feature this helper does not emulate.
func ExpandHome(path string) (string, error) {
	if path != "~" && !hasHomePrefix(path) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

func hasHomePrefix(path string) bool {
	return len(path) >= 2 && path[0] == '~' && path[1] == '/'
}

// FileSizeMB reports the size of the file at path in whole mebibytes. The
// second return is false when the path cannot be statted or is a directory.
func FileSizeMB(path string) (int, bool) {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return 0, false
	}
	return int(fi.Size() / (1 << 20)), true
}
