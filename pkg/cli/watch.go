package cli

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/osu-uwrt/riptide-fw-bridge/pkg/compiler"
)

func newWatchCommand() *Command {
	cmd := &Command{
		Name:        "watch",
		Description: "Regenerate the bridge artifacts whenever the config or messages change",
		Flags:       flag.NewFlagSet("watch", flag.ExitOnError),
	}

	include := cmd.Flags.String("include", compiler.DefaultIncludePath,
		"Include path for the handwritten bridge header")
	var msgPaths stringList
	cmd.Flags.Var(&msgPaths, "msg-path", "Root directory to resolve ROS messages from (repeatable)")

	cmd.Flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: protobridge watch [flags] <config> <proto_out> <cmake_out> <cmake_target>\n")
		cmd.Flags.PrintDefaults()
	}

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		opts, err := resolveOptions(cmd.Flags.Args(), *include, msgPaths)
		if err != nil {
			cmd.Flags.Usage()
			return err
		}
		return runWatch(newLogger(), opts)
	}
	return cmd
}

// runWatch runs an initial generation and then keeps regenerating on every
// relevant filesystem change. A failing regeneration is logged and the watch
// keeps going, so a half-edited config does not kill the loop.
func runWatch(log *logrus.Logger, opts generateOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(opts.ConfigPath)); err != nil {
		return err
	}
	for _, root := range opts.MsgPaths {
		if err := watchTree(watcher, root); err != nil {
			return err
		}
	}

	if err := runGenerate(log, opts); err != nil {
		log.WithError(err).Error("Initial generation failed")
	} else {
		log.Info("Generated bridge artifacts")
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchTree(watcher, event.Name); err != nil {
						log.WithError(err).Warn("Unable to watch new directory")
					}
				}
			}
			if !relevantChange(opts, event) {
				continue
			}
			log.WithField("path", event.Name).Info("Change detected, regenerating")
			if err := runGenerate(log, opts); err != nil {
				log.WithError(err).Error("Generation failed")
				continue
			}
			log.Info("Generated bridge artifacts")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("Watcher error")
		}
	}
}

func relevantChange(opts generateOptions, event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return false
	}
	if sameFile(event.Name, opts.ConfigPath) {
		return true
	}
	return filepath.Ext(event.Name) == ".msg"
}

func sameFile(a, b string) bool {
	aAbs, err := filepath.Abs(a)
	if err != nil {
		return a == b
	}
	bAbs, err := filepath.Abs(b)
	if err != nil {
		return a == b
	}
	return aAbs == bAbs
}

// watchTree registers root and every directory under it.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
