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

package frontend

import (
	"github.com/retrofe/retrofe/collection"
	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/filecache"
	"github.com/retrofe/retrofe/hiscores"
	"github.com/retrofe/retrofe/launcher"
	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/metadata"
	"github.com/retrofe/retrofe/musicplayer"
	"github.com/retrofe/retrofe/payload"
	"github.com/retrofe/retrofe/restrictor"
	"github.com/retrofe/retrofe/userinput"
	"github.com/retrofe/retrofe/workers"
)

// CoreServices owns the process-wide singletons. Construction order is
// explicit here and Shutdown tears them down in reverse.
type CoreServices struct {
	Cfg   *config.Configuration
	Pool  *workers.Pool
	Cache *filecache.Cache
	Meta  *metadata.Store

	// settings persisted across runs. FirstPlaylist's post hook saves
	// the registry, so a Set is durable on its own.
	Saved         *config.Saved
	FirstPlaylist *config.String

	Builder *collection.Builder
	Dirty   *collection.DirtyRegistry

	Scores    *hiscores.LocalCache
	Global    *hiscores.GlobalCache
	Converter *hiscores.Converter

	Music       *musicplayer.Player
	Restrictors *restrictor.Manager

	Mapper   *userinput.Mapper
	Debounce *userinput.Debouncer

	Launch  *launcher.Launcher
	Payload *payload.Runner
}

// NewCoreServices is the preferred method of initialisation for the
// CoreServices type. Optional subsystems that fail to start are logged
// and left nil; a missing configuration is fatal.
func NewCoreServices(cfg *config.Configuration) (*CoreServices, error) {
	svc := &CoreServices{Cfg: cfg}

	svc.Pool = workers.NewPool(0)

	var err error
	svc.Cache, err = filecache.NewCache()
	if err != nil {
		return nil, curated.Errorf("core services: %v", err)
	}

	metaPath, err := cfg.AbsolutePath("metadataFile", "meta/stats.txt")
	if err != nil {
		return nil, curated.Errorf("core services: %v", err)
	}
	svc.Meta, err = metadata.NewStore(metaPath)
	if err != nil {
		return nil, curated.Errorf("core services: %v", err)
	}

	svc.Saved = config.NewSaved()
	svc.FirstPlaylist = &config.String{}
	if err := svc.Saved.Add("firstPlaylist", svc.FirstPlaylist); err != nil {
		return nil, err
	}
	svc.FirstPlaylist.SetHookPost(func(string) error {
		return svc.Saved.Save()
	})

	svc.Builder = collection.NewBuilder(cfg, svc.Meta)
	svc.Dirty = collection.NewDirtyRegistry()

	svc.Scores = hiscores.NewLocalCache()
	if zipPath, ok := cfg.GetString("hiScoreZip"); ok {
		overrideDir, _ := cfg.AbsolutePath("hiScoreOverrideDir", "hi2txt/scores")
		if err := svc.Scores.Load(zipPath, overrideDir); err != nil {
			logger.Logf(logger.Warning, "core", "%v", err)
		}
		hi2txt := cfg.String("hi2txtExecutable", "hi2txt")
		svc.Converter = hiscores.NewConverter(svc.Scores, hi2txt, overrideDir, svc.Pool)
	}

	globalPath, _ := cfg.AbsolutePath("globalHiScoreCache", "meta/global_cache.json")
	svc.Global = hiscores.NewGlobalCache(globalPath)
	if err := svc.Global.Load(); err != nil {
		logger.Logf(logger.Info, "core", "%v", err)
	}
	if url, ok := cfg.GetString("globalHiScoreUrl"); ok {
		svc.Global.RefreshAsync(svc.Pool, url, cfg.Int("globalHiScoreLimit", 10), func(changed []string) {
			logger.Logf(logger.Info, "core", "global hi-scores changed: %d game(s)", len(changed))
		})
	}

	svc.Music = musicplayer.NewPlayer(cfg)
	if svc.Music.Enabled() {
		if err := svc.Music.Start(); err != nil {
			logger.Logf(logger.Warning, "core", "%v", err)
		}
	}

	svc.Restrictors = restrictor.NewManager()
	if cfg.Bool("servoStikEnabled", false) {
		svc.Restrictors.ProbeAsync(svc.Pool)
	}

	svc.Mapper = userinput.NewMapper()
	svc.Mapper.LoadBindings(cfg)
	svc.Debounce = userinput.NewDebouncer()

	svc.Launch = launcher.NewLauncher(cfg, svc.Cache)

	if cfg.Bool("payload.enabled", false) {
		syncer, err := payload.NewSyncer(cfg, svc.Dirty)
		if err != nil {
			logger.Logf(logger.Warning, "core", "%v", err)
		} else {
			svc.Payload = payload.NewRunner(cfg, syncer, svc.Pool)
			svc.Payload.Start()
		}
	}

	return svc, nil
}

// Shutdown stops the services in reverse construction order.
func (svc *CoreServices) Shutdown() {
	if svc.Payload != nil {
		svc.Payload.Stop()
	}

	if svc.Music != nil {
		svc.Music.Shutdown()
	}

	if r, ok := svc.Restrictors.Get(); ok {
		r.SetWay(8)
		r.Close()
	}

	if err := svc.Global.Save(); err != nil {
		logger.Logf(logger.Warning, "core", "%v", err)
	}
	if err := svc.Meta.Save(); err != nil {
		logger.Logf(logger.Warning, "core", "%v", err)
	}

	svc.Pool.Shutdown()
}
