// This file is part of RetroFE.
//
// RetroFE is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RetroFE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RetroFE.  If not, see <https://www.gnu.org/licenses/>.

// Package resources locates files relative to the RetroFE installation
// root. The root is the directory containing the collections, layouts and
// launchers directories, alongside settings.conf.
package resources

import (
	"os"
	"path/filepath"

	"github.com/retrofe/retrofe/curated"
)

// sentinel errors for the resources package.
const (
	NotFound = "resources: not found: %s"
)

// the memoized installation root. discovered on first use.
var root string

// BaseDir returns the RetroFE installation root.
//
// The RETROFE_PATH environment variable takes precedence. Otherwise the
// directory of the running executable is used, unless the current working
// directory contains a settings.conf, in which case the process is running
// "portable" from a checkout or unpacked archive and the working directory
// wins.
func BaseDir() (string, error) {
	if root != "" {
		return root, nil
	}

	if p := os.Getenv("RETROFE_PATH"); p != "" {
		root = filepath.Clean(p)
		return root, nil
	}

	if wd, err := os.Getwd(); err == nil {
		if _, err := os.Stat(filepath.Join(wd, "settings.conf")); err == nil {
			root = wd
			return root, nil
		}
	}

	ex, err := os.Executable()
	if err != nil {
		return "", curated.Errorf("resources: %v", err)
	}
	root = filepath.Dir(ex)
	return root, nil
}

// SetBaseDir overrides root discovery. Used by the command line and by
// tests.
func SetBaseDir(path string) {
	root = filepath.Clean(path)
}

// JoinPath prepends the installation root to the supplied path elements.
func JoinPath(elem ...string) (string, error) {
	b, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{b}, elem...)...), nil
}

// ExecutablePath returns the path of the running RetroFE executable.
func ExecutablePath() (string, error) {
	ex, err := os.Executable()
	if err != nil {
		return "", curated.Errorf("resources: %v", err)
	}
	return ex, nil
}
