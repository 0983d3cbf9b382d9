package crawl

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/iParadigms/walker/internal/extractor"
)

// FileHandler is a basic Handler that writes each extracted page record as
// JSON under a directory tree mirroring the page's host and path, e.g. a
// page at http://test.com/amazing/stuff.html is written to
// $Root/test.com/amazing/stuff.html.json.
type FileHandler struct {
	Root string
}

// HandlePage writes record's extracted fields to a JSON file named after
// docID's host and path.
func (h *FileHandler) HandlePage(docID string, record extractor.Record, _ []string) {
	u, err := url.Parse(docID)
	if err != nil {
		log.Warn().Err(err).Str("doc_id", docID).Msg("FileHandler: cannot parse doc id as URL, skipping")
		return
	}

	path := filepath.Join(h.Root, u.Host, u.RequestURI())
	if strings.HasSuffix(path, "/") || path == "" {
		path = filepath.Join(path, "index")
	}
	path += ".json"

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0777); err != nil {
		log.Error().Err(err).Str("dir", dir).Msg("FileHandler: failed to create directory")
		return
	}

	out, err := os.Create(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("FileHandler: failed to create file")
		return
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		log.Error().Err(err).Str("path", path).Msg("FileHandler: failed to write record")
	}
}
