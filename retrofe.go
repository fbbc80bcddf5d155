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

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/retrofe/retrofe/collection"
	"github.com/retrofe/retrofe/config"
	"github.com/retrofe/retrofe/curated"
	"github.com/retrofe/retrofe/frontend"
	"github.com/retrofe/retrofe/launcher"
	"github.com/retrofe/retrofe/logger"
	"github.com/retrofe/retrofe/modalflag"
	"github.com/retrofe/retrofe/payload"
	"github.com/retrofe/retrofe/resources"
	"github.com/retrofe/retrofe/version"
)

func init() {
	// SDL windows and the event pump must live on the main thread
	runtime.LockOSThread()
}

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("RUN", "PAYLOAD", "VERSION")

	var err error

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		err = run(md)
	case "PAYLOAD":
		err = payloadSync(md)
	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

// loadConfiguration reads settings.conf from the installation root,
// applies saved settings on top and installs the log filter.
func loadConfiguration(base string, logOverride string, echo bool) (*config.Configuration, error) {
	if base != "" {
		resources.SetBaseDir(base)
	}

	cfg := config.NewConfiguration()

	path, err := resources.JoinPath("settings.conf")
	if err != nil {
		return nil, err
	}
	if err := cfg.Import(path, ""); err != nil {
		if !curated.Is(err, config.FileNotFound) {
			return nil, err
		}
		logger.Logf(logger.Warning, "main", "no settings.conf, using defaults")
	}

	controls, err := resources.JoinPath("controls.conf")
	if err != nil {
		return nil, err
	}
	if err := cfg.Import(controls, "controls."); err != nil {
		if !curated.Is(err, config.FileNotFound) {
			return nil, err
		}
		logger.Logf(logger.Warning, "main", "no controls.conf, no keys bound")
	}

	if err := cfg.LoadSettings(); err != nil {
		return nil, err
	}

	opt := cfg.String("log", "")
	if logOverride != "" {
		opt = logOverride
	}
	filter, err := logger.ParseFilter(opt)
	if err != nil {
		return nil, err
	}
	logger.SetFilter(filter)

	if echo {
		logger.SetEcho(os.Stderr, true)
	}

	return cfg, nil
}

func run(md *modalflag.Modes) error {
	md.NewMode()

	base := md.AddString("base", "", "installation root (default: the executable's directory)")
	logOpt := md.AddString("log", "", "log filter, overrides the log option in settings.conf")
	echo := md.AddBool("v", false, "echo log entries to stderr as they happen")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS | sdl.INIT_JOYSTICK); err != nil {
		return curated.Errorf("main: sdl: %v", err)
	}
	defer sdl.Quit()

	// an outer loop because a launcher entry can ask for a reboot, which
	// rebuilds everything from a fresh configuration read
	for {
		reboot, err := runOnce(*base, *logOpt, *echo)
		if err != nil {
			return err
		}
		if !reboot {
			return nil
		}
		logger.Logf(logger.Info, "main", "rebooting")
		logger.Clear()
	}
}

func runOnce(base string, logOpt string, echo bool) (bool, error) {
	cfg, err := loadConfiguration(base, logOpt, echo)
	if err != nil {
		return false, err
	}

	svc, err := frontend.NewCoreServices(cfg)
	if err != nil {
		return false, err
	}
	defer svc.Shutdown()

	win := frontend.NewWindow(cfg, svc.Mapper)
	if err := win.Open(); err != nil {
		return false, err
	}
	defer win.Close()

	svc.Launch.Attach(win, win, svc.Music, svc.Restrictors, svc.Converter,
		svc.Builder.UpdateTimeSpent)

	fe := frontend.NewFrontend(svc)
	if err := fe.Boot(); err != nil {
		return false, err
	}

	if err := frontend.Run(fe, win); err != nil {
		return false, err
	}

	return fe.RebootRequested(), nil
}

func payloadSync(md *modalflag.Modes) error {
	md.NewMode()

	base := md.AddString("base", "", "installation root (default: the executable's directory)")
	logOpt := md.AddString("log", "", "log filter, overrides the log option in settings.conf")
	dry := md.AddBool("dry", false, "report what would be downloaded without writing anything")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	cfg, err := loadConfiguration(*base, *logOpt, true)
	if err != nil {
		return err
	}

	syncer, err := payload.NewSyncer(cfg, collection.NewDirtyRegistry())
	if err != nil {
		return err
	}
	return syncer.Run(*dry)
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	ver, rev, _ := version.Version()
	fmt.Printf("%s %s (%s)\n", version.ApplicationName, ver, rev)
	return nil
}

// launcher.Window is satisfied by frontend.Window. The assertions live
// here so a drifting interface fails the build at the wiring site.
var _ launcher.Window = (*frontend.Window)(nil)
var _ launcher.InputProbe = (*frontend.Window)(nil)
