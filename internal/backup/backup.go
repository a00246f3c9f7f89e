// Package backup reads and writes the versioned JSON archive format.
//
// Archives are validated against a JSON schema before decoding so a
// truncated or hand-edited file is rejected up front instead of loading
// a half-usable collection.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jeanpaul/recall/internal/srs"
)

// Version is the archive format version this build writes.
const Version = 1

// ErrFormat wraps every archive decoding or validation error.
var ErrFormat = errors.New("backup: invalid archive")

const archiveSchema = `{
	"type": "object",
	"required": ["version", "exported_at", "items"],
	"properties": {
		"version": {"enum": [1]},
		"exported_at": {"type": "string"},
		"items": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["deck", "question", "answer", "step", "due_at", "created_at"],
				"properties": {
					"deck": {"type": "string"},
					"question": {"type": "string"},
					"answer": {"type": "string"},
					"step": {"type": "integer", "minimum": 0},
					"due_at": {"type": "string"},
					"last_reviewed_at": {"type": ["string", "null"]},
					"recalled": {"type": "integer", "minimum": 0},
					"forgot": {"type": "integer", "minimum": 0},
					"history": {"type": "string"},
					"created_at": {"type": "string"}
				}
			}
		}
	}
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(archiveSchema))
	})
	return schema, schemaErr
}

type archive struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exported_at"`
	Items      []archiveItem `json:"items"`
}

// archiveItem carries the full item state except the database ID, which
// the importing store assigns fresh.
type archiveItem struct {
	Deck           string     `json:"deck"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer"`
	Step           int        `json:"step"`
	DueAt          time.Time  `json:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	Recalled       int        `json:"recalled"`
	Forgot         int        `json:"forgot"`
	History        string     `json:"history"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Export writes items to w as an indented version-1 archive.
func Export(w io.Writer, exportedAt time.Time, items []*srs.Item) error {
	arch := archive{
		Version:    Version,
		ExportedAt: exportedAt.UTC(),
		Items:      make([]archiveItem, 0, len(items)),
	}
	for _, it := range items {
		arch.Items = append(arch.Items, archiveItem{
			Deck:           it.Deck,
			Question:       it.Question,
			Answer:         it.Answer,
			Step:           it.Step,
			DueAt:          it.DueAt,
			LastReviewedAt: it.LastReviewedAt,
			Recalled:       it.Recalled,
			Forgot:         it.Forgot,
			History:        it.History,
			CreatedAt:      it.CreatedAt,
		})
	}

	data, err := json.MarshalIndent(arch, "", "  ")
	if err != nil {
		return fmt.Errorf("backup: encode archive: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("backup: write archive: %w", err)
	}
	return nil
}

// WriteFile exports items to path, staging through a temp file in the
// same directory so an interrupted export never clobbers an existing
// archive.
func WriteFile(path string, exportedAt time.Time, items []*srs.Item) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".recall-export-*")
	if err != nil {
		return fmt.Errorf("backup: create temp file: %w", err)
	}

	if err := Export(tmp, exportedAt, items); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("backup: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("backup: replace %s: %w", path, err)
	}
	return nil
}

// Import validates and decodes an archive. Returned items have no ID;
// the caller inserts them into a store, which assigns fresh ones.
func Import(r io.Reader) ([]*srs.Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("backup: read archive: %w", err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("backup: compile schema: %w", err)
	}
	result, err := sch.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return nil, fmt.Errorf("%w:\n- %s", ErrFormat, dumpErrors(errs))
	}

	var arch archive
	if err := json.Unmarshal(data, &arch); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	items := make([]*srs.Item, 0, len(arch.Items))
	for _, ai := range arch.Items {
		items = append(items, &srs.Item{
			Deck:           ai.Deck,
			Question:       ai.Question,
			Answer:         ai.Answer,
			Step:           ai.Step,
			DueAt:          ai.DueAt,
			LastReviewedAt: ai.LastReviewedAt,
			Recalled:       ai.Recalled,
			Forgot:         ai.Forgot,
			History:        ai.History,
			CreatedAt:      ai.CreatedAt,
		})
	}
	return items, nil
}

// dumpErrors keeps validation output readable, showing the first three
// violations and a count of the rest.
func dumpErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0]
	}
	truncated := ""
	if len(errs) > 3 {
		truncated = fmt.Sprintf("\n... and %d more", len(errs)-3)
		errs = errs[:3]
	}

	result := ""
	for i, e := range errs {
		if i > 0 {
			result += "\n- "
		}
		result += e
	}
	return result + truncated
}
