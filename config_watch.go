package main

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watch sends the config at path on configs every time the file is
// written, until ctx is done.
func Watch(ctx context.Context, path string, configs chan<- *Config, errors chan<- error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("can't create watcher: %w", err)
	}
	go func() {
		// ignore close error
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// getting rename, chmod, remove event when editing conf on linux
				if event.Op&(fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if event.Op&fsnotify.Rename != 0 {
					// the editor replaced the file, follow the new one
					_ = watcher.Add(path)
				}
				c, err := ReadConfig(path)
				if err != nil {
					send(ctx, errors, err)
					continue
				}
				send(ctx, configs, c)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				send(ctx, errors, err)
			case <-ctx.Done():
				return
			}
		}
	}()
	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("can't watch %s: %w", path, err)
	}
	return nil
}

func send[T any](ctx context.Context, ch chan<- T, v T) {
	select {
	case ch <- v:
	case <-ctx.Done():
	}
}
