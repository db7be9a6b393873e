// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

// Split breaks content into lines, each keeping its terminator. A final line
// without a terminator is kept as-is; no empty trailing element is produced.
func Split(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Join concatenates lines back into file content.
func Join(lines []string) []byte {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
	}
	return buf.Bytes()
}

// ReadLines reads the whole file at path and splits it with Split.
func ReadLines(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file '%s': %w", path, err)
	}
	return Split(content), nil
}

// WriteLines replaces the file at path with lines. The new content is written
// to a temporary file in the same directory and renamed over path, so readers
// observe either the old or the new content. The permissions of an existing
// file are kept.
func WriteLines(path string, lines []string) error {
	info, statErr := os.Stat(path)

	if err := atomic.WriteFile(path, bytes.NewReader(Join(lines))); err != nil {
		return fmt.Errorf("failed to write env file '%s': %w", path, err)
	}

	if statErr == nil {
		if err := os.Chmod(path, info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to restore permissions of env file '%s': %w", path, err)
		}
	}

	return nil
}
