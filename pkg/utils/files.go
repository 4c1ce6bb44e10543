package utils

import (
	"io"
	"os"
	"path/filepath"
)

// StdinName selects standard input in place of a file path.
const StdinName = "-"

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// OpenSource opens a program source. "" and "-" mean stdin, which is
// returned with a no-op closer.
func OpenSource(path string) (io.ReadCloser, error) {
	if path == "" || path == StdinName {
		return io.NopCloser(os.Stdin), nil
	}
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return nil, err
	}
	return os.Open(fullPath)
}
