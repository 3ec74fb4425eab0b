// PresenceBridge - Local Rich Presence Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presencebridge

// Package localpresence watches a directory of locally developed presence
// bundles and reports changed files to producers.
package localpresence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/presencebridge/internal/models"
)

// ErrUnsupported is returned by Load for files that are neither .json nor .js.
var ErrUnsupported = errors.New("localpresence: unsupported file type")

// Load reads one bundle file. JSON files are decoded; script files are kept
// as raw text. The record is named by the file's base name.
func Load(path string) (models.LocalFile, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".json" && ext != ".js" {
		return models.LocalFile{}, ErrUnsupported
	}

	data, err := os.ReadFile(path) //nolint:gosec // paths come from the watched directory
	if err != nil {
		return models.LocalFile{}, fmt.Errorf("read %s: %w", name, err)
	}

	if ext == ".js" {
		return models.LocalFile{File: name, Contents: string(data)}, nil
	}

	var contents any
	if err := json.Unmarshal(data, &contents); err != nil {
		return models.LocalFile{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return models.LocalFile{File: name, Contents: contents}, nil
}

// LoadAll loads paths in order, skipping directories, unsupported files and
// files that fail to load. Load failures are returned joined.
func LoadAll(paths []string) ([]models.LocalFile, error) {
	files := make([]models.LocalFile, 0, len(paths))
	var errs []error
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if info.IsDir() {
			continue
		}

		file, err := Load(path)
		switch {
		case errors.Is(err, ErrUnsupported):
		case err != nil:
			errs = append(errs, err)
		default:
			files = append(files, file)
		}
	}
	return files, errors.Join(errs...)
}
