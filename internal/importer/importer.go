// Package importer parses deck files into question/answer pairs.
//
// Delimited text is the primary format (default comma, tab for .tsv);
// .xlsx workbooks and .yaml decks are also accepted. A malformed record
// fails the whole file so an import is never silently partial.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/jeanpaul/recall/internal/srs"
)

// ErrFormat wraps every malformed-record error.
var ErrFormat = errors.New("importer: bad record format")

// tagRe spots markup in a field; only matching fields go through the
// HTML converter.
var tagRe = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)

// Importer parses deck files with a fixed configuration.
type Importer struct {
	delimiter rune
	html      bool
	conv      *md.Converter
}

// New returns an Importer using the given text delimiter. With
// convertHTML set, fields containing markup are rewritten as Markdown
// (Anki exports embed <b>, <div> and friends).
func New(delimiter rune, convertHTML bool) *Importer {
	imp := &Importer{delimiter: delimiter, html: convertHTML}
	if convertHTML {
		imp.conv = md.NewConverter("", true, nil)
	}
	return imp
}

// ExpandGlobs resolves add-command arguments. Arguments containing glob
// metacharacters are expanded (** is supported); expanding to nothing is
// an error. Plain paths pass through untouched.
func ExpandGlobs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("importer: bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("importer: pattern %q matched no files", arg)
		}
		files = append(files, matches...)
	}
	return files, nil
}

// File parses one deck file, dispatching on extension. The returned deck
// name is non-empty only when the file itself declares one (.yaml).
func (imp *Importer) File(path string) ([]srs.Pair, string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		pairs, err := imp.readWorkbook(path)
		return pairs, "", err
	case ".yaml", ".yml":
		return imp.readYAML(path)
	case ".tsv":
		pairs, err := imp.readDelimited(path, '\t')
		return pairs, "", err
	default:
		pairs, err := imp.readDelimited(path, imp.delimiter)
		return pairs, "", err
	}
}

func (imp *Importer) readDelimited(path string, delim rune) ([]srs.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("importer: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delim
	r.FieldsPerRecord = -1

	var pairs []srs.Pair
	for n := 1; ; n++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s record %d: %v", ErrFormat, path, n, err)
		}
		if len(record) != 2 {
			return nil, fmt.Errorf("%w: %s record %d has %d fields, want 2", ErrFormat, path, n, len(record))
		}
		pairs = append(pairs, imp.pair(record[0], record[1]))
	}
	return pairs, nil
}

func (imp *Importer) readWorkbook(path string) ([]srs.Pair, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("importer: open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrFormat, path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("importer: read %s: %w", path, err)
	}

	var pairs []srs.Pair
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" || strings.TrimSpace(row[1]) == "" {
			return nil, fmt.Errorf("%w: %s row %d needs question and answer columns", ErrFormat, path, i+1)
		}
		pairs = append(pairs, imp.pair(row[0], row[1]))
	}
	return pairs, nil
}

type yamlDeck struct {
	Deck  string `yaml:"deck"`
	Cards []struct {
		Question string `yaml:"question"`
		Answer   string `yaml:"answer"`
	} `yaml:"cards"`
}

func (imp *Importer) readYAML(path string) ([]srs.Pair, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("importer: open %s: %w", path, err)
	}
	var deck yamlDeck
	if err := yaml.Unmarshal(data, &deck); err != nil {
		return nil, "", fmt.Errorf("%w: %s: %v", ErrFormat, path, err)
	}
	if len(deck.Cards) == 0 {
		return nil, "", fmt.Errorf("%w: %s declares no cards", ErrFormat, path)
	}

	pairs := make([]srs.Pair, 0, len(deck.Cards))
	for i, c := range deck.Cards {
		if c.Question == "" || c.Answer == "" {
			return nil, "", fmt.Errorf("%w: %s card %d is missing question or answer", ErrFormat, path, i+1)
		}
		pairs = append(pairs, imp.pair(c.Question, c.Answer))
	}
	return pairs, deck.Deck, nil
}

func (imp *Importer) pair(q, a string) srs.Pair {
	if imp.html {
		q = imp.clean(q)
		a = imp.clean(a)
	}
	return srs.Pair{Question: q, Answer: a}
}

// clean converts a markup-bearing field to Markdown. Fields the
// converter rejects are kept verbatim.
func (imp *Importer) clean(field string) string {
	if !tagRe.MatchString(field) {
		return field
	}
	out, err := imp.conv.ConvertString(field)
	if err != nil {
		return field
	}
	return strings.TrimSpace(out)
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
