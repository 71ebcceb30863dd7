// Command omniscope wires the library core together: it locates (or
// initializes) a library root, opens the card store and relational index,
// reconciles them against the filesystem, and drains the debounced watcher.
// It is deliberately thin glue, not an interactive CLI — the terminal
// renderer, the keystroke loop, and the command-line wrapper that would
// drive internal/modal are external collaborators out of scope for this
// module (spec.md §1).
//
// It follows a resolve-a-root-directory, open-a-backend, stream-events-
// with-the-standard-logger startup shape.
package main

import (
	"errors"
	"log"
	"os"

	"github.com/omniscope/omniscope/internal/cardstore"
	"github.com/omniscope/omniscope/internal/errs"
	"github.com/omniscope/omniscope/internal/fileimport"
	"github.com/omniscope/omniscope/internal/fssync"
	"github.com/omniscope/omniscope/internal/index"
	"github.com/omniscope/omniscope/internal/libroot"
	"github.com/omniscope/omniscope/internal/watcher"
)

func main() {
	os.Exit(run())
}

func run() int {
	root, err := resolveRoot()
	if err != nil {
		log.Printf("library error: %v", err)
		return errs.ExitCode(err)
	}
	log.Printf("using library %q (%s) at %s", root.Manifest.Name(), root.Manifest.ID(), root.Path)

	idx, err := index.Open(root.DBPath())
	if err != nil {
		log.Printf("index error: %v", err)
		return 4
	}
	defer idx.Close()

	store, err := cardstore.New(root.CardsDir())
	if err != nil {
		log.Printf("card store error: %v", err)
		return 4
	}

	cards, err := store.List()
	if err != nil {
		log.Printf("card store list error: %v", err)
		return 4
	}
	if err := idx.SyncFromCards(cards); err != nil {
		log.Printf("index sync error: %v", err)
		return 4
	}
	log.Printf("indexed %d cards from %s", len(cards), root.CardsDir())

	filePaths, err := idx.ListAllFilePaths()
	if err != nil {
		log.Printf("index error: %v", err)
		return 4
	}
	known := make(map[string]bool, len(filePaths))
	for _, p := range filePaths {
		known[p] = true
	}

	extensions := root.Manifest.WatchExtensions()
	report, err := fssync.Scan(root.Path, idx, extensions, known)
	if err != nil {
		log.Printf("filesystem sync scan error: %v", err)
		return 4
	}
	log.Printf("sync scan: %d new-on-disk, %d missing-on-disk, %d in-sync, %d untracked files",
		len(report.NewOnDisk), len(report.MissingOnDisk), report.InSync, len(report.UntrackedFiles))
	if len(report.NewOnDisk) > 0 || len(report.MissingOnDisk) > 0 {
		if err := fssync.ApplySync(root.Path, report, fssync.DiskWins, idx); err != nil {
			log.Printf("filesystem sync apply error: %v", err)
			return 4
		}
		log.Printf("applied disk-wins sync resolution")
	}

	watchCfg := watcher.Config{
		DebounceInterval: root.Manifest.DebounceInterval(),
		MinFileSizeBytes: root.Manifest.MinFileSizeBytes(),
		Extensions:       extensions,
	}
	w, err := watcher.New(root.Path, watchCfg, 64)
	if err != nil {
		log.Printf("watcher error: %v", err)
		return 4
	}
	defer w.Close()

	autoImport := root.Manifest.AutoImport()
	coversDir := root.CacheDir() + "/covers"

	log.Printf("watching %s for changes (auto-import: %v)", root.Path, autoImport)
	for ev := range w.Events() {
		switch ev.Kind {
		case watcher.NewBookFile:
			if !autoImport {
				log.Printf("new book file (auto-import disabled): %s", ev.Path)
				continue
			}
			card, err := fileimport.Import(ev.Path, fileimport.Options{CoversDir: coversDir})
			if err != nil {
				log.Printf("import %s: %v", ev.Path, err)
				continue
			}
			if err := store.Save(card); err != nil {
				log.Printf("save card for %s: %v", ev.Path, err)
				continue
			}
			if err := idx.Upsert(card); err != nil {
				log.Printf("index %s: %v", ev.Path, err)
				continue
			}
			log.Printf("imported %q from %s", card.Metadata.Title, ev.Path)
		case watcher.BookFileRemoved:
			log.Printf("book file removed: %s", ev.Path)
		case watcher.DirectoryCreated, watcher.DirectoryRemoved:
			log.Printf("%s: %s", ev.Kind, ev.Path)
		}
	}

	return 0
}

// resolveRoot discovers a library starting from the current directory,
// initializing one in place if none is found.
func resolveRoot() (libroot.Root, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return libroot.Root{}, err
	}

	root, err := libroot.Discover(cwd, nil)
	if err == nil {
		return root, nil
	}

	var notInit *errs.LibraryNotInitialized
	if !errors.As(err, &notInit) {
		return libroot.Root{}, err
	}

	log.Printf("no library found under %s; initializing one", cwd)
	return libroot.Init(cwd, "My Library", libroot.InitOptions{CreateDir: true})
}
