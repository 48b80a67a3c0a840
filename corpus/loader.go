// Package corpus loads labeled samples from CSV, JSON and SQL sources.
package corpus

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"github.com/dimuls/textclassifier/entity"
)

// MissingFieldError is returned when a source has no column for a required
// sample field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "corpus: required field " + e.Field + " not found"
}

var ErrUnsupportedFormat = errors.New("corpus: unsupported file format")

// Schema lists accepted column names of sample fields, matched case
// insensitively.
type Schema struct {
	Text  []string
	Label []string
}

var DefaultSchema = Schema{
	Text:  []string{"text", "sentence"},
	Label: []string{"label", "category"},
}

type Options struct {
	Schema Schema

	// Latin1 decodes CSV input as ISO-8859-1.
	Latin1 bool

	// StripHTML replaces sample text with the text content of its markup.
	StripHTML bool
}

type Loader struct {
	opts Options
	log  *logrus.Entry
}

func NewLoader(opts Options) *Loader {
	if len(opts.Schema.Text) == 0 {
		opts.Schema.Text = DefaultSchema.Text
	}
	if len(opts.Schema.Label) == 0 {
		opts.Schema.Label = DefaultSchema.Label
	}
	return &Loader{
		opts: opts,
		log:  logrus.WithField("subsystem", "corpus_loader"),
	}
}

// LoadFile loads samples from a .csv or .json file.
func (l *Loader) LoadFile(path string) ([]entity.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return l.LoadCSV(f)
	case ".json":
		return l.LoadJSON(f)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// LoadCSV loads samples from CSV with a header row.
func (l *Loader) LoadCSV(r io.Reader) ([]entity.Sample, error) {
	if l.opts.Latin1 {
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &MissingFieldError{Field: l.opts.Schema.Text[0]}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	textIdx, labelIdx, err := l.columns(header)
	if err != nil {
		return nil, err
	}

	var samples []entity.Sample

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		var text, label string
		if textIdx < len(record) {
			text = record[textIdx]
		}
		if labelIdx < len(record) {
			label = record[labelIdx]
		}

		if s, ok := l.sample(text, label, line); ok {
			samples = append(samples, s)
		}
	}

	return samples, nil
}

// LoadJSON loads samples from a JSON array of objects.
func (l *Loader) LoadJSON(r io.Reader) ([]entity.Sample, error) {
	var records []map[string]interface{}

	err := json.NewDecoder(r).Decode(&records)
	if err != nil {
		return nil, fmt.Errorf("JSON decode: %w", err)
	}

	samples := make([]entity.Sample, 0, len(records))

	for i, record := range records {
		fields := make([]string, 0, len(record))
		for k := range record {
			fields = append(fields, k)
		}

		textIdx, labelIdx, err := l.columns(fields)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		text := stringValue(record[fields[textIdx]])
		label := stringValue(record[fields[labelIdx]])

		if s, ok := l.sample(text, label, i); ok {
			samples = append(samples, s)
		}
	}

	return samples, nil
}

// LoadSQL loads samples from rows returned by query.
func (l *Loader) LoadSQL(ctx context.Context, db *sql.DB, query string) (
	[]entity.Sample, error) {

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}

	textIdx, labelIdx, err := l.columns(columns)
	if err != nil {
		return nil, err
	}

	values := make([]sql.NullString, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	var samples []entity.Sample

	for row := 1; rows.Next(); row++ {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row %d: %w", row, err)
		}
		s, ok := l.sample(values[textIdx].String, values[labelIdx].String, row)
		if ok {
			samples = append(samples, s)
		}
	}

	return samples, rows.Err()
}

func stringValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	}
	return fmt.Sprint(v)
}

func (l *Loader) columns(names []string) (textIdx, labelIdx int, err error) {
	textIdx = indexOf(names, l.opts.Schema.Text)
	if textIdx < 0 {
		return 0, 0, &MissingFieldError{Field: l.opts.Schema.Text[0]}
	}
	labelIdx = indexOf(names, l.opts.Schema.Label)
	if labelIdx < 0 {
		return 0, 0, &MissingFieldError{Field: l.opts.Schema.Label[0]}
	}
	return textIdx, labelIdx, nil
}

func indexOf(names []string, accepted []string) int {
	for _, a := range accepted {
		for i, n := range names {
			if strings.EqualFold(strings.TrimSpace(n), a) {
				return i
			}
		}
	}
	return -1
}

func (l *Loader) sample(text, label string, position int) (entity.Sample, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		l.log.WithField("position", position).
			Warning("skipping sample without label")
		return entity.Sample{}, false
	}

	if l.opts.StripHTML {
		stripped, err := StripHTML(text)
		if err != nil {
			l.log.WithError(err).WithField("position", position).
				Warning("failed to strip HTML, keeping raw text")
		} else {
			text = stripped
		}
	}

	return entity.Sample{Text: text, Label: label}, true
}
