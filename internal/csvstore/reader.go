package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// row gives access to one CSV record by column name.
type row struct {
	cols   map[string]int
	fields []string
	line   int
}

func (r row) get(col string) string {
	return strings.TrimSpace(r.fields[r.cols[col]])
}

// raw returns the column without trimming.
func (r row) raw(col string) string {
	return r.fields[r.cols[col]]
}

// readTable streams the named data file through fn, one record at a time.
// Records that fail to parse, are short, or are rejected by fn are logged and
// counted as skipped. A missing file reads as empty.
func (s *Store) readTable(name string, required []string, fn func(row) error) (ReadStats, error) {
	var stats ReadStats
	path := s.Path(name)
	log := s.log.WithField("file", path)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("read header %s: %w", path, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return stats, fmt.Errorf("%s: %w: %s", path, ErrMissingColumns, strings.Join(missing, ", "))
	}

	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			stats.Skipped++
			log.WithField("row", perr.StartLine).WithError(err).Warn("skipping malformed csv row")
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("read %s: %w", path, err)
		}
		line, _ := r.FieldPos(0)
		if len(fields) < len(header) {
			stats.Skipped++
			log.WithFields(logrus.Fields{"row": line, "fields": len(fields)}).Warn("skipping short csv row")
			continue
		}
		if err := fn(row{cols: cols, fields: fields, line: line}); err != nil {
			stats.Skipped++
			log.WithField("row", line).WithError(err).Warn("skipping invalid csv row")
			continue
		}
		stats.Rows++
	}
	if stats.Skipped > 0 {
		log.WithField("skipped", stats.Skipped).Warn("some rows could not be loaded")
	}
	return stats, nil
}
