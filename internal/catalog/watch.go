package catalog

import (
	"github.com/fsnotify/fsnotify"

	"github.com/llmhive/llmhive/internal/logging"
)

// Watch reloads the catalog whenever path changes on disk. It runs
// until stop is closed; reload failures are logged and otherwise
// ignored so a transient bad write to the YAML file does not crash the
// running process on the next edit. This is an optional convenience —
// nothing in the core pipeline requires hot reload to function.
func (c *Catalog) Watch(path string, log *logging.Logger, stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := c.Reload(path); err != nil {
					log.Warn("catalog reload failed", "path", path, "error", err)
					continue
				}
				log.Info("catalog reloaded", "path", path, "version", c.Version())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("catalog watcher error", "error", err)
			}
		}
	}()
	return nil
}
