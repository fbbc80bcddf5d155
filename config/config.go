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

// Package config holds the property map built from the key=value .conf
// files (settings.conf, controls.conf, per-collection settings.conf).
// Properties imported later override earlier values of the same key.
//
// Reads are safe from any goroutine. The launcher and the payload runner
// both consult the configuration away from the main thread.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/resources"
)

// sentinel errors for the config package.
const (
	FileNotFound = "config: file not found: %s"
)

// Configuration is the process-wide property map.
type Configuration struct {
	crit  sync.RWMutex
	props map[string]string
}

// NewConfiguration is the preferred method of initialisation for the
// Configuration type.
func NewConfiguration() *Configuration {
	return &Configuration{
		props: make(map[string]string),
	}
}

// Import reads a .conf file into the property map. Every key is stored
// with keyPrefix prepended, allowing per-collection settings to live under
// "collections.<name>.". Lines starting with # and blank lines are
// ignored. A line without an = is ignored with a warning.
func (cfg *Configuration) Import(path string, keyPrefix string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return curated.Errorf(FileNotFound, path)
		}
		return curated.Errorf("config: %v", err)
	}
	defer f.Close()

	cfg.crit.Lock()
	defer cfg.crit.Unlock()

	lineNum := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		eq := strings.Index(line, "=")
		if eq < 0 {
			logger.Logf(logger.Warning, "config", "%s:%d: no '=' on line, ignoring", filepath.Base(path), lineNum)
			continue
		}

		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if key == "" {
			logger.Logf(logger.Warning, "config", "%s:%d: empty key, ignoring", filepath.Base(path), lineNum)
			continue
		}

		cfg.props[keyPrefix+key] = val
	}
	if err := scanner.Err(); err != nil {
		return curated.Errorf("config: %v", err)
	}

	logger.Logf(logger.Info, "config", "imported %s", path)
	return nil
}

// SetProperty stores a property, overriding any imported value.
func (cfg *Configuration) SetProperty(key string, value string) {
	cfg.crit.Lock()
	defer cfg.crit.Unlock()
	cfg.props[key] = value
}

// GetString returns the property value and whether the key is present.
func (cfg *Configuration) GetString(key string) (string, bool) {
	cfg.crit.RLock()
	defer cfg.crit.RUnlock()
	v, ok := cfg.props[key]
	return v, ok
}

// String returns the property value or the supplied default when the key
// is absent.
func (cfg *Configuration) String(key string, def string) string {
	if v, ok := cfg.GetString(key); ok {
		return v
	}
	return def
}

// Bool returns the property interpreted as a boolean. "true", "yes" and
// "on" (any case) and "1" are true. Absent or unparseable values return
// the default.
func (cfg *Configuration) Bool(key string, def bool) bool {
	v, ok := cfg.GetString(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "true", "yes", "on", "1":
		return true
	case "false", "no", "off", "0":
		return false
	}
	logger.Logf(logger.Warning, "config", "%s: not a boolean: %s", key, v)
	return def
}

// Int returns the property interpreted as an integer.
func (cfg *Configuration) Int(key string, def int) int {
	v, ok := cfg.GetString(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Logf(logger.Warning, "config", "%s: not an integer: %s", key, v)
		return def
	}
	return i
}

// Float returns the property interpreted as a float.
func (cfg *Configuration) Float(key string, def float64) float64 {
	v, ok := cfg.GetString(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Logf(logger.Warning, "config", "%s: not a number: %s", key, v)
		return def
	}
	return f
}

// PropertyPrefixExists returns true if any key begins with the prefix.
func (cfg *Configuration) PropertyPrefixExists(prefix string) bool {
	cfg.crit.RLock()
	defer cfg.crit.RUnlock()
	for k := range cfg.props {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

// KeysWithPrefix returns every key beginning with the prefix.
func (cfg *Configuration) KeysWithPrefix(prefix string) []string {
	cfg.crit.RLock()
	defer cfg.crit.RUnlock()
	keys := make([]string, 0)
	for k := range cfg.props {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

// AbsolutePath resolves a property that names a path. Relative paths are
// joined to the installation root.
func (cfg *Configuration) AbsolutePath(key string, def string) (string, error) {
	v := cfg.String(key, def)
	if v == "" {
		return "", nil
	}
	if filepath.IsAbs(v) {
		return filepath.Clean(v), nil
	}
	return resources.JoinPath(v)
}

// CollectionAbsolutePath returns the directory of a collection's items.
// The collection's list.path property overrides the conventional
// collections/<name>/roms location.
func (cfg *Configuration) CollectionAbsolutePath(collection string) (string, error) {
	key := "collections." + collection + ".list.path"
	if v, ok := cfg.GetString(key); ok && v != "" {
		if filepath.IsAbs(v) {
			return filepath.Clean(v), nil
		}
		return resources.JoinPath(v)
	}
	return resources.JoinPath("collections", collection, "roms")
}
