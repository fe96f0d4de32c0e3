package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	maxConfigSize = 10 << 20 // 10MB
	maxDepth      = 32
	maxPathLen    = 4096
)

var allowedExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

func validateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty config path")
	}
	if len(path) > maxPathLen {
		return fmt.Errorf("path too long: %d > %d", len(path), maxPathLen)
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(path))] {
		return fmt.Errorf("only .json, .yaml and .yml config files are allowed: %s", path)
	}
	return nil
}

// safeReadFile reads a config file after checking its name and size.
func safeReadFile(path string) ([]byte, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d > %d bytes", info.Size(), maxConfigSize)
	}

	return os.ReadFile(filepath.Clean(path))
}

// checkDepth rejects pathologically nested documents.
func checkDepth(v any, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("configuration nesting exceeds %d levels", maxDepth)
	}
	switch t := v.(type) {
	case map[string]any:
		for _, child := range t {
			if err := checkDepth(child, depth+1); err != nil {
				return err
			}
		}
	case []any:
		for _, child := range t {
			if err := checkDepth(child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
