package main

import (
	"fmt"
	"io"
	"strings"
)

// readText joins args, or reads all of r when there are none.
func readText(args []string, r io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
