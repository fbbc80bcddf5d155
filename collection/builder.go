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

package collection

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/metadata"
	"github.com/retrofe/retrofe/resources"
)

// sentinel errors for the collection package.
const (
	NoSuchCollection = "collection: no such collection: %s"
)

// Builder constructs collections from the on-disk layout under
// collections/<name>/.
type Builder struct {
	cfg  *config.Configuration
	meta *metadata.Store
}

// NewBuilder is the preferred method of initialisation for the Builder
// type.
func NewBuilder(cfg *config.Configuration, meta *metadata.Store) *Builder {
	return &Builder{
		cfg:  cfg,
		meta: meta,
	}
}

// Build constructs the named collection: ROM enumeration, subcollection
// splicing, info overrides, menu entries, playlists and sorting.
func (bld *Builder) Build(name string) (*Info, error) {
	return bld.build(name, map[string]bool{})
}

func (bld *Builder) build(name string, visited map[string]bool) (*Info, error) {
	if visited[name] {
		return nil, curated.Errorf("collection: subcollection cycle at %s", name)
	}
	visited[name] = true

	collectionDir, err := resources.JoinPath("collections", name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(collectionDir); err != nil {
		return nil, curated.Errorf(NoSuchCollection, name)
	}

	prefix := "collections." + name + "."

	info := NewInfo(name)
	info.MenuSort = bld.cfg.Bool(prefix+"list.menuSort", true)
	info.SubsSplit = bld.cfg.Bool(prefix+"subsSplit", false)
	info.SortType = bld.cfg.String(prefix+"list.sortType", "")
	info.SortDesc = bld.cfg.Bool(prefix+"list.sortDesc", false)
	info.Extensions = splitList(bld.cfg.String(prefix+"list.extensions", ""))

	info.ListPath, err = bld.cfg.CollectionAbsolutePath(name)
	if err != nil {
		return nil, err
	}

	items, err := bld.enumerate(info)
	if err != nil {
		return nil, err
	}

	// subcollections splice in before the collection's own items. the
	// .sub files are processed in sorted order so the result is
	// deterministic
	subItems, err := bld.subcollections(collectionDir, info, visited)
	if err != nil {
		return nil, err
	}
	info.Items = append(subItems, items...)

	bld.applyInfoOverrides(collectionDir, info)
	bld.applyPlayStats(info)

	if err := bld.menuEntries(collectionDir, info); err != nil {
		return nil, err
	}

	fileOrder, err := bld.playlists(collectionDir, info)
	if err != nil {
		return nil, err
	}
	bld.lastPlayedPlaylist(info)

	// the favorites and quicklist playlists always exist, even when empty
	for _, p := range []string{"favorites", "quicklist"} {
		if _, ok := info.Playlists[p]; !ok {
			info.SetPlaylist(p, []*Item{})
		}
	}

	info.SortItems()
	for p := range info.Playlists {
		if p == "all" || p == "lastplayed" {
			continue
		}
		// a playlist named after a metadata attribute sorts by that
		// attribute when every item carries a value. otherwise the file
		// order wins, with unlisted items appended alphabetically
		if !info.SortPlaylist(p, p) {
			info.CustomSort(p, fileOrder[p])
		}
	}

	logger.Logf(logger.Info, "collection", "built %s (%d items, %d playlists)", name, len(info.Items), len(info.Playlists))
	return info, nil
}

func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimPrefix(strings.TrimSpace(p), ".")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// enumerate walks the ROM directory creating a leaf item per file with a
// matching extension. Enumeration is sorted so the pre-sort item order is
// deterministic.
func (bld *Builder) enumerate(info *Info) ([]*Item, error) {
	hierarchy := bld.cfg.Bool("collections."+info.Name+".list.romHierarchy", false)

	exts := make(map[string]bool, len(info.Extensions))
	for _, e := range info.Extensions {
		exts[strings.ToLower(e)] = true
	}

	items := make([]*Item, 0)

	addFile := func(dir string, filename string) {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
		if len(exts) > 0 && !exts[ext] {
			return
		}
		stem := strings.TrimSuffix(filename, filepath.Ext(filename))
		if stem == "" {
			return
		}
		item := NewItem(stem, true, info)
		if dir != info.ListPath {
			item.Filepath = dir
		}
		items = append(items, item)
	}

	if hierarchy {
		err := filepath.WalkDir(info.ListPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip unreadable directories
			}
			if !d.IsDir() {
				addFile(filepath.Dir(path), d.Name())
			}
			return nil
		})
		if err != nil {
			return nil, curated.Errorf("collection: %v", err)
		}
	} else {
		entries, err := os.ReadDir(info.ListPath)
		if err != nil {
			if os.IsNotExist(err) {
				// a menu-only collection has no ROM directory
				return items, nil
			}
			return nil, curated.Errorf("collection: %v", err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				addFile(info.ListPath, e.Name())
			}
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// subcollections builds every <sub>.sub file found in the collection
// directory and returns their items, concatenated in sorted filename
// order.
func (bld *Builder) subcollections(collectionDir string, info *Info, visited map[string]bool) ([]*Item, error) {
	entries, err := os.ReadDir(collectionDir)
	if err != nil {
		return nil, curated.Errorf("collection: %v", err)
	}

	names := make([]string, 0)
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sub") {
			names = append(names, strings.TrimSuffix(e.Name(), ".sub"))
		}
	}
	sort.Strings(names)

	items := make([]*Item, 0)
	for _, sub := range names {
		subInfo, err := bld.build(sub, visited)
		if err != nil {
			logger.Logf(logger.Warning, "collection", "subcollection %s: %v", sub, err)
			continue
		}
		info.HasSubs = true
		// spliced items keep their own collection pointer. subsSplit
		// grouping depends on it
		items = append(items, subInfo.Items...)
	}

	return items, nil
}

// parseConf reads a key=value file into a map. Used for the per-item info
// overrides which are not part of the process-wide configuration.
func parseConf(path string) (map[string]string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	props := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		props[strings.TrimSpace(line[:eq])] = strings.TrimSpace(line[eq+1:])
	}
	return props, true
}

// applyInfoOverrides merges collections/<name>/info/<item>.conf into each
// item, falling back to default.conf.
func (bld *Builder) applyInfoOverrides(collectionDir string, info *Info) {
	infoDir := filepath.Join(collectionDir, "info")
	if _, err := os.Stat(infoDir); err != nil {
		return
	}

	defaults, _ := parseConf(filepath.Join(infoDir, "default.conf"))

	for _, item := range info.Items {
		props, ok := parseConf(filepath.Join(infoDir, item.Name+".conf"))
		if !ok {
			props = defaults
		}
		for k, v := range props {
			switch k {
			case "title":
				item.Title = v
			case "fullTitle":
				item.FullTitle = v
			case "file":
				item.File = v
			case "filepath":
				item.Filepath = v
			default:
				item.Attributes[k] = v
			}
		}
	}
}

// applyPlayStats copies play statistics from the metadata store into each
// item's attribute bag so they are available as sort attributes.
func (bld *Builder) applyPlayStats(info *Info) {
	if bld.meta == nil {
		return
	}
	for _, item := range info.Items {
		r := bld.meta.Get(item.CollectionName(), item.Name)
		if r.PlayCount == 0 {
			continue
		}
		item.Attributes["playCount"] = strconv.Itoa(r.PlayCount)
		item.Attributes["timeSpent"] = strconv.FormatInt(int64(r.TimeSpent/time.Second), 10)
		item.Attributes["lastPlayed"] = strconv.FormatInt(r.LastPlayed.Unix(), 10)
	}
}

// menuEntries appends non-leaf items. menu.txt lists the target
// collections explicitly. Without menu.txt a menu can be synthesized from
// the collectionLaunchers configuration.
func (bld *Builder) menuEntries(collectionDir string, info *Info) error {
	f, err := os.Open(filepath.Join(collectionDir, "menu.txt"))
	if err == nil {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			info.Items = append(info.Items, NewItem(line, false, info))
		}
		return scanner.Err()
	}

	if !bld.cfg.Bool("collections."+info.Name+".menuFromCollectionLaunchers", false) {
		return nil
	}

	keys := bld.cfg.KeysWithPrefix("collectionLaunchers.")
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, "collectionLaunchers."))
	}
	sort.Strings(names)
	for _, n := range names {
		info.Items = append(info.Items, NewItem(n, false, info))
	}
	return nil
}

// resolveToken finds the item a playlist token refers to. A bare token is
// an item of this collection (or a spliced subcollection). The
// _<collection>:<name> form refers to an item by its owning collection.
func resolveToken(info *Info, token string) (*Item, bool) {
	if strings.HasPrefix(token, "_") {
		col, name, ok := strings.Cut(token[1:], ":")
		if !ok {
			return nil, false
		}
		for _, item := range info.Items {
			if item.Name == name && strings.EqualFold(item.CollectionName(), col) {
				return item, true
			}
		}
		return nil, false
	}
	return info.FindItem(token)
}

// playlists reads every playlists/*.txt into the collection. The returned
// map holds the token order of each file for later custom sorting.
func (bld *Builder) playlists(collectionDir string, info *Info) (map[string][]string, error) {
	fileOrder := make(map[string][]string)

	playlistDir := filepath.Join(collectionDir, "playlists")
	entries, err := os.ReadDir(playlistDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fileOrder, nil
		}
		return nil, curated.Errorf("collection: %v", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, filename := range names {
		playlist := strings.TrimSuffix(filename, ".txt")
		if playlist == "all" || playlist == "lastplayed" {
			continue
		}

		f, err := os.Open(filepath.Join(playlistDir, filename))
		if err != nil {
			logger.Logf(logger.Warning, "collection", "playlist %s: %v", filename, err)
			continue
		}

		items := make([]*Item, 0)
		order := make([]string, 0)
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			token := strings.TrimSpace(scanner.Text())
			if token == "" || strings.HasPrefix(token, "#") {
				continue
			}
			order = append(order, token)
			if item, ok := resolveToken(info, token); ok {
				items = append(items, item)
			} else {
				logger.Logf(logger.Warning, "collection", "playlist %s: unknown item %s", playlist, token)
			}
		}
		f.Close()

		info.SetPlaylist(playlist, items)
		fileOrder[playlist] = order
	}

	return fileOrder, nil
}

// lastPlayedPlaylist builds the lastplayed playlist from the metadata
// store, most recent first, truncated to lastPlayedSize.
func (bld *Builder) lastPlayedPlaylist(info *Info) {
	size := bld.cfg.Int("lastPlayedSize", 10)
	if size <= 0 || bld.meta == nil {
		info.SetPlaylist("lastplayed", []*Item{})
		return
	}

	type played struct {
		item *Item
		when time.Time
	}
	recent := make([]played, 0)
	for _, item := range info.Items {
		if !item.Leaf {
			continue
		}
		r := bld.meta.Get(item.CollectionName(), item.Name)
		if !r.LastPlayed.IsZero() {
			recent = append(recent, played{item: item, when: r.LastPlayed})
		}
	}
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].when.After(recent[j].when) })
	if len(recent) > size {
		recent = recent[:size]
	}

	items := make([]*Item, 0, len(recent))
	for _, p := range recent {
		items = append(items, p.item)
	}
	info.SetPlaylist("lastplayed", items)
}

// UpdateLastPlayedPlaylist promotes the item to the head of the
// lastplayed playlist, removing any duplicate and truncating to size.
func UpdateLastPlayedPlaylist(info *Info, item *Item, size int) {
	current, _ := info.Playlist("lastplayed")

	items := make([]*Item, 0, len(current)+1)
	items = append(items, item)
	for _, i := range current {
		if i != item {
			items = append(items, i)
		}
	}
	if size > 0 && len(items) > size {
		items = items[:size]
	}
	info.SetPlaylist("lastplayed", items)
}

// UpdateTimeSpent records a completed play of the item: play count, time
// spent and last played, both in the item's attributes and in the
// persistent store.
func (bld *Builder) UpdateTimeSpent(item *Item, spent time.Duration, when time.Time) error {
	if bld.meta != nil {
		bld.meta.AddPlay(item.CollectionName(), item.Name, spent, when)
		r := bld.meta.Get(item.CollectionName(), item.Name)
		item.Attributes["playCount"] = strconv.Itoa(r.PlayCount)
		item.Attributes["timeSpent"] = strconv.FormatInt(int64(r.TimeSpent/time.Second), 10)
		item.Attributes["lastPlayed"] = strconv.FormatInt(r.LastPlayed.Unix(), 10)
		return bld.meta.Save()
	}
	return nil
}

// SaveFavorites writes the favorites playlist of a collection back to
// disk. Items from other collections are written in the qualified
// _<collection>:<name> form.
func SaveFavorites(info *Info) error {
	favorites, _ := info.Playlist("favorites")

	b := strings.Builder{}
	for _, item := range favorites {
		b.WriteString(item.Token(info.Name))
		b.WriteString("\n")
	}

	path, err := resources.JoinPath(FormatPlaylistPath(info.Name, "favorites"))
	if err != nil {
		return err
	}
	if err := resources.WriteAtomic(path, []byte(b.String())); err != nil {
		return curated.Errorf("collection: %v", err)
	}
	logger.Logf(logger.Info, "collection", "saved favorites for %s (%d items)", info.Name, len(favorites))
	return nil
}
