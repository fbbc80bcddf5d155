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

package payload

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/retrofe/retrofe/curated"
)

// sentinel errors for stanza validation.
const (
	BadStanza     = "payload: bad stanza: %s"
	LocalEscapes  = "payload: local path escapes install root: %s"
	URLNotAllowed = "payload: url not on allow-list: %s"
)

// Stanza is one download directive from the payload file.
type Stanza struct {
	URL          string
	Local        string
	ETag         string
	LastModified string
	SHA256       string
	MaxBytes     int64
}

// ParseStanzas splits a payload file into stanzas separated by blank
// lines. Each stanza is a key = value block; unrecognised keys are an
// error so that typos do not silently disable a cap.
func ParseStanzas(data string, defaultMaxBytes int64) ([]Stanza, error) {
	var stanzas []Stanza

	for _, block := range strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n\n") {
		st := Stanza{MaxBytes: defaultMaxBytes}
		empty := true

		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			key, value, ok := strings.Cut(line, "=")
			if !ok {
				return nil, curated.Errorf(BadStanza, line)
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			empty = false

			switch key {
			case "url":
				st.URL = value
			case "local":
				st.Local = value
			case "etag":
				st.ETag = value
			case "last_modified":
				st.LastModified = value
			case "sha256":
				st.SHA256 = strings.ToLower(value)
			case "max_bytes":
				n, err := strconv.ParseInt(value, 10, 64)
				if err != nil || n <= 0 {
					return nil, curated.Errorf(BadStanza, line)
				}
				st.MaxBytes = n
			default:
				return nil, curated.Errorf(BadStanza, line)
			}
		}

		if empty {
			continue
		}
		if st.URL == "" || st.Local == "" {
			return nil, curated.Errorf(BadStanza, "url and local are required")
		}
		stanzas = append(stanzas, st)
	}

	return stanzas, nil
}

// url prefixes a syncer accepts by default.
var allowedURLPrefixes = []string{
	"https://raw.githubusercontent.com/",
	"https://objects.githubusercontent.com/",
	"https://github.com/",
}

func urlAllowed(url string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(url, prefix) {
			return true
		}
	}
	return false
}

// resolveLocal joins a stanza's local path to the install root,
// rejecting absolute paths and any traversal outside the root. The
// check runs before any network activity.
func resolveLocal(root string, local string) (string, error) {
	clean := filepath.Clean(strings.ReplaceAll(local, "\\", "/"))
	if filepath.IsAbs(clean) {
		return "", curated.Errorf(LocalEscapes, local)
	}

	full := filepath.Join(root, clean)
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", curated.Errorf(LocalEscapes, local)
	}
	return full, nil
}

// sidecarName flattens a local path into a single filename usable for
// the ETag and Last-Modified sidecars.
func sidecarName(local string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(local)
}
