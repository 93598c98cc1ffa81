// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fsutil contains utilities for working with the output directories of the renderers.
package fsutil

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ExpandHome replaces a leading "~" or "~user" by the home directory of the user.
// Returns dir unchanged if it doesn't start with "~".
//
// It returns an error if the user is unknown.
func ExpandHome(dir string) (string, error) {
	if !strings.HasPrefix(dir, "~") {
		return dir, nil
	}
	userName, rest, _ := strings.Cut(dir[1:], string(filepath.Separator))
	var (
		usr *user.User
		err error
	)
	if userName == "" {
		usr, err = user.Current()
	} else {
		usr, err = user.Lookup(userName)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to find home directory for path %q", dir)
	}
	return filepath.Join(usr.HomeDir, rest), nil
}

// OutputDir expands the home directory in dir (see ExpandHome) and creates it, along with any
// missing parents. It returns the expanded directory.
func OutputDir(dir string) (string, error) {
	if dir == "" {
		return "", errors.New("output directory not given")
	}
	expanded, err := ExpandHome(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create output directory %q", expanded)
	}
	return expanded, nil
}
