// Package fileimport builds a fresh *model.BookCard from a file on disk
// (spec.md §3 lifecycle item (i), "importing a file"; §8's end-to-end
// scenario "Import a PDF whose filename is ..."). It never touches the
// card store or index itself — the caller decides whether/where to save.
//
// The filename-fallback idiom (use the filename when no metadata title
// exists) is extended here with the "Author - Title.ext" split spec.md
// §8's scenario requires and with the sha256/size/format bookkeeping
// spec.md §3's FileInfo invariant needs.
package fileimport

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/omniscope/omniscope/internal/epub"
	"github.com/omniscope/omniscope/internal/model"
)

// Options configures Import.
type Options struct {
	// CoversDir, if set, is passed to the EPUB parser as the cache
	// directory for extracted cover images.
	CoversDir string
}

// Import reads path, computes its format/size/hash, extracts whatever
// metadata is recoverable (EPUB OPF metadata, or a filename split for
// anything else), and returns a freshly constructed card. The card is not
// persisted; the caller saves it via internal/cardstore and internal/index.
func Import(path string, opts Options) (*model.BookCard, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("import %q: not a regular file", path)
	}

	format := model.FormatFromExt(strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")))

	sum, err := hashFile(path)
	if err != nil {
		return nil, fmt.Errorf("hash %q: %w", path, err)
	}

	meta := model.Metadata{}
	var coverPath string

	if format == model.FormatEPUB {
		em, err := epub.ParseBook(path, opts.CoversDir)
		if err == nil {
			meta.Title = em.Title
			meta.Authors = em.Authors
			meta.Publisher = em.Publisher
			meta.Language = em.Language
			if !em.Published.IsZero() {
				y := em.Published.Year()
				meta.Year = &y
			}
			coverPath = em.CoverPath
		}
	}

	if meta.Title == "" {
		author, title := splitFilename(path)
		meta.Title = title
		if author != "" {
			meta.Authors = []string{author}
		}
	}

	card := model.NewCard(meta)
	addedAt := model.NewTime(info.ModTime())
	card.File = model.NewFilePresent(path, format, info.Size(), sum, addedAt)
	if coverPath != "" {
		card.Web.CoverURL = coverPath
	}
	return card, nil
}

// splitFilename applies spec.md §8's "Author - Title.ext" convention: the
// basename (extension stripped) is split on the first " - " separator; the
// left side becomes the sole author, the right side the title. Filenames
// without that separator become the title verbatim.
func splitFilename(path string) (author, title string) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if idx := strings.Index(base, " - "); idx != -1 {
		return strings.TrimSpace(base[:idx]), strings.TrimSpace(base[idx+3:])
	}
	return "", strings.TrimSpace(base)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
