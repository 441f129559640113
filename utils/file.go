package utils

import "os"

// FileOrDirExists returns true if a file or directory exists at path.
func FileOrDirExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateFile writes content to path, replacing any previous content.
func CreateFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
