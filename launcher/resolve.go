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

package launcher

import (
	"os"
	"strings"

	"github.com/retrofe/retrofe/collection"
	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/resources"
)

// sentinel errors.
const (
	NoLauncher = "launcher: no launcher for %s"
	NoROMFile  = "launcher: no rom file for %s"
)

// Command is a fully resolved launch: the executable and arguments with
// every placeholder substituted.
type Command struct {
	Launcher   string
	Executable string
	Arguments  []string
	Dir        string
	Reboot     bool
}

// launcherName resolves which launcher configuration an item uses.
// Precedence: a per-item launchers/<item>.conf file in the collection
// directory, then the collectionLaunchers entry for the collection, then
// the collection's own launcher setting.
func (lnc *Launcher) launcherName(item *collection.Item) (string, error) {
	c := item.CollectionName()

	perItem, err := resources.JoinPath("collections", c, "launchers", item.Name+".conf")
	if err == nil {
		if data, err := os.ReadFile(perItem); err == nil {
			if name := strings.TrimSpace(string(data)); name != "" {
				return name, nil
			}
		}
	}

	if name, ok := lnc.cfg.GetString("collectionLaunchers." + c); ok {
		return name, nil
	}
	if name, ok := lnc.cfg.GetString("collections." + c + ".launcher"); ok {
		return name, nil
	}

	return "", curated.Errorf(NoLauncher, item.Name)
}

// launcherProperty resolves one field of a launcher configuration. The
// local override prefix wins over the collection prefix which wins over
// the plain launchers prefix.
func (lnc *Launcher) launcherProperty(name string, field string) (string, bool) {
	for _, prefix := range []string{"localLaunchers.", "collectionLaunchers.", "launchers."} {
		if v, ok := lnc.cfg.GetString(prefix + name + "." + field); ok {
			return v, true
		}
	}
	return "", false
}

// locateROM finds the item's file on disk, trying each configured
// extension in order. Items with a file override are looked up exactly.
func (lnc *Launcher) locateROM(item *collection.Item) (dir string, path string, err error) {
	c := item.CollectionName()

	dir = item.Filepath
	if dir == "" {
		dir, err = lnc.cfg.CollectionAbsolutePath(c)
		if err != nil {
			return "", "", err
		}
	}

	if item.File != "" {
		if full, ok := lnc.cache.Find(dir, item.File); ok {
			return dir, full, nil
		}
		return "", "", curated.Errorf(NoROMFile, item.File)
	}

	exts := splitExtensions(lnc.cfg.String("collections."+c+".list.extensions", ""))
	if full, ok := lnc.cache.FindMatchingFile(dir, item.Name, exts); ok {
		return dir, full, nil
	}

	return "", "", curated.Errorf(NoROMFile, item.Name)
}

func splitExtensions(list string) []string {
	var exts []string
	for _, e := range strings.Split(list, ",") {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if e != "" {
			exts = append(exts, e)
		}
	}
	return exts
}

// Resolve builds the command for an item without running it.
func (lnc *Launcher) Resolve(item *collection.Item) (*Command, error) {
	name, err := lnc.launcherName(item)
	if err != nil {
		return nil, err
	}

	executable, ok := lnc.launcherProperty(name, "executable")
	if !ok {
		return nil, curated.Errorf(NoLauncher, name)
	}
	arguments, _ := lnc.launcherProperty(name, "arguments")
	dir, _ := lnc.launcherProperty(name, "currentDirectory")
	reboot, _ := lnc.launcherProperty(name, "reboot")

	romDir, romPath, err := lnc.locateROM(item)
	if err != nil {
		return nil, err
	}

	sub := lnc.substituter(item, romDir, romPath, executable)
	executable = sub.Replace(executable)

	cmd := &Command{
		Launcher:   name,
		Executable: executable,
		Dir:        sub.Replace(dir),
		Reboot:     strings.EqualFold(reboot, "true") || reboot == "1" || strings.EqualFold(reboot, "yes"),
	}

	// %CMD% refers to the substituted executable
	sub = lnc.substituter(item, romDir, romPath, executable)
	cmd.Arguments = tokenize(sub.Replace(arguments))

	return cmd, nil
}

// substituter builds the placeholder replacer for one launch.
func (lnc *Launcher) substituter(item *collection.Item, romDir string, romPath string, executable string) *strings.Replacer {
	base, _ := resources.BaseDir()
	execPath, _ := resources.ExecutablePath()
	collectionPath, _ := lnc.cfg.CollectionAbsolutePath(item.CollectionName())

	filename := romPath
	if i := strings.LastIndexAny(romPath, `/\`); i >= 0 {
		filename = romPath[i+1:]
	}

	return strings.NewReplacer(
		"%ITEM_FILEPATH%", romPath,
		"%ITEM_NAME%", item.Name,
		"%ITEM_FILENAME%", filename,
		"%ITEM_DIRECTORY%", romDir,
		"%ITEM_COLLECTION_NAME%", item.CollectionName(),
		"%RETROFE_PATH%", base,
		"%COLLECTION_PATH%", collectionPath,
		"%RETROFE_EXEC_PATH%", execPath,
		"%CMD%", executable,
	)
}

// tokenize splits an argument string the way a shell would: whitespace
// separates tokens, quoted runs (single or double) keep their spaces and
// drop the quotes.
func tokenize(args string) []string {
	var tokens []string
	var cur strings.Builder
	var quote rune
	inToken := false

	for _, r := range args {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		tokens = append(tokens, cur.String())
	}

	return tokens
}
