// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/wavetermdev/facetengine/pkg/panichandler"
	"github.com/wavetermdev/facetengine/pkg/scenario"
	"github.com/wavetermdev/facetengine/pkg/utilds"
)

// watchScenarios reruns a scenario whenever its file is written, until ctx is done.
// directories are watched (not files) so editors that replace the file are handled.
// reruns happen one at a time off the event loop, repeated writes to a file that is
// already waiting collapse into one run.
func watchScenarios(ctx context.Context, runner *scenario.Runner, fileNames []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()
	var reruns *utilds.WorkQueue[string]
	reruns = utilds.NewWorkQueue(func(fileName string) {
		defer func() {
			panichandler.LogPanic("facetctl rerun "+fileName, recover())
		}()
		log.Printf("[facetctl] %s changed, rerunning (%d more pending)\n", fileName, reruns.Pending())
		if _, err := runScenarioFile(ctx, runner, fileName); err != nil {
			WriteStderr("%v\n", err)
		}
	})
	defer func() {
		reruns.Close(true)
		reruns.Wait()
	}()
	watched := make(map[string]string) // abs path -> name as given
	dirs := make(map[string]bool)
	for _, fileName := range fileNames {
		absName, err := filepath.Abs(fileName)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", fileName, err)
		}
		watched[absName] = fileName
		dir := filepath.Dir(absName)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	log.Printf("[facetctl] watching %d scenario file(s)\n", len(watched))
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			absName, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			fileName, ok := watched[absName]
			if !ok {
				continue
			}
			reruns.Enqueue(fileName)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[facetctl] watcher error: %v\n", err)
		}
	}
}
