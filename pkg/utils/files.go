package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultIRExtension is appended to derived output paths.
const DefaultIRExtension = ".ll"

// suffixLen is how many trailing characters of the input path are replaced
// when deriving the output path, e.g. "prog.my" -> "prog.ll".
const suffixLen = 3

// GetPathInfo returns the absolute form of relPath and its directory.
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

// OutputPath drops the last three characters of inPath and appends ext
// (DefaultIRExtension when empty).
func OutputPath(inPath, ext string) (string, error) {
	if len(inPath) < suffixLen {
		return "", fmt.Errorf("input path %q is shorter than %d characters", inPath, suffixLen)
	}
	if ext == "" {
		ext = DefaultIRExtension
	}
	return inPath[:len(inPath)-suffixLen] + ext, nil
}

// SamePath reports whether a and b name the same file once made absolute.
func SamePath(a, b string) (bool, error) {
	absA, _, err := GetPathInfo(a)
	if err != nil {
		return false, err
	}
	absB, _, err := GetPathInfo(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}

func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read source file %q: %w", path, err)
	}
	return string(data), nil
}

func WriteIR(path string, ir string) error {
	if err := os.WriteFile(path, []byte(ir), 0o644); err != nil {
		return fmt.Errorf("failed to write IR file %q: %w", path, err)
	}
	return nil
}
