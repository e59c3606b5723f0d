package main

import (
	"log"
	"time"

	"github.com/ancientlore/scribe/virtual"
	"github.com/fsnotify/fsnotify"
)

// watchTemplates reloads the site's templates when files in the template
// folder change. Events are debounced so that an editor writing several
// files triggers a single reload. The returned function stops the watcher.
func watchTemplates(dir string, vfs *virtual.FS) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		var reload *time.Timer
		const debounce = 500 * time.Millisecond
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Printf("Template change detected: %s (%s)", event.Name, event.Op)
					if reload != nil {
						reload.Stop()
					}
					reload = time.AfterFunc(debounce, func() {
						if err := vfs.ReloadTemplates(); err != nil {
							log.Printf("Cannot reload templates: %s", err)
						} else {
							log.Print("Templates reloaded")
						}
					})
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Watcher error: %s", err)
			}
		}
	}()

	return watcher.Close, nil
}
