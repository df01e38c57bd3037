// Package csvstore persists the menu catalog, orders and sales log as CSV
// files. Rewrites go through a temp file and an atomic rename, with the
// previous file copied to the backup directory first. Reads skip rows that
// cannot be parsed and report how many were skipped.
package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	MenuFile   = "menu_items.csv"
	OrdersFile = "orders.csv"
	SalesFile  = "sales_reports.csv"

	// BackupTimeLayout is the timestamp suffix of backup file names.
	BackupTimeLayout = "20060102_150405"
)

var (
	menuHeader   = []string{"id", "name", "category", "price", "description", "is_available"}
	ordersHeader = []string{
		"order_id", "timestamp", "customer_name", "customer_phone", "table_number", "order_type",
		"status", "is_priority", "notes", "tax_rate", "subtotal", "tax_amount", "total_amount", "items_json",
	}
	salesHeader = []string{
		"date", "order_id", "customer_name", "order_type", "status",
		"subtotal", "tax_amount", "total_amount", "items_count",
	}
)

var backupName = regexp.MustCompile(`^(.+)_(\d{8}_\d{6})\.csv$`)

// ErrMissingColumns is returned when a file's header lacks required columns.
var ErrMissingColumns = errors.New("csv header is missing required columns")

// ReadStats summarizes a tolerant read. Rows counts records that parsed,
// Skipped counts records rejected as a whole, and Dropped counts order lines
// whose menu item no longer exists.
type ReadStats struct {
	Rows    int `json:"rows"`
	Skipped int `json:"skipped"`
	Dropped int `json:"dropped"`
}

// Store reads and writes the three data files. Methods are safe for
// concurrent use.
type Store struct {
	dataDir   string
	backupDir string
	log       logrus.FieldLogger
	now       func() time.Time

	mu sync.Mutex
}

// NewStore returns a store rooted at dataDir. An empty backupDir defaults to
// dataDir/backups. Both directories are created, and any missing data file is
// created with its header row.
func NewStore(dataDir, backupDir string, log logrus.FieldLogger) (*Store, error) {
	if dataDir == "" {
		return nil, errors.New("data directory is required")
	}
	if backupDir == "" {
		backupDir = filepath.Join(dataDir, "backups")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Store{
		dataDir:   dataDir,
		backupDir: backupDir,
		log:       log.WithField("component", "csvstore"),
		now:       time.Now,
	}
	for _, dir := range []string{dataDir, backupDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	for name, header := range map[string][]string{MenuFile: menuHeader, OrdersFile: ordersHeader, SalesFile: salesHeader} {
		if err := s.ensureFile(name, header); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) DataDir() string   { return s.dataDir }
func (s *Store) BackupDir() string { return s.backupDir }

// Path returns the absolute location of a data file name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dataDir, name)
}

func (s *Store) ensureFile(name string, header []string) error {
	path := s.Path(name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	w.Write(header)
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write header %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	s.log.WithField("path", path).Info("created data file")
	return nil
}

// writeTable replaces the named data file with header and rows. The existing
// file is only touched by the final rename, after its backup has been taken.
func (s *Store) writeTable(name string, header []string, rows [][]string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(name)
	tmp, err := os.CreateTemp(s.dataDir, "."+strings.TrimSuffix(name, ".csv")+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err = w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err = s.backup(path); err != nil {
			return err
		}
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	s.log.WithFields(logrus.Fields{"path": path, "rows": len(rows)}).Debug("saved data file")
	return nil
}

// CreateBackup copies the file at path into the backup directory as
// <stem>_<YYYYMMDD_HHMMSS>.csv and returns the backup's path.
func (s *Store) CreateBackup(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backup(path)
}

func (s *Store) backup(path string) (dst string, err error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dst = filepath.Join(s.backupDir, fmt.Sprintf("%s_%s.csv", stem, s.now().Format(BackupTimeLayout)))

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s for backup: %w", path, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create backup %s: %w", dst, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close backup %s: %w", dst, closeErr)
		}
	}()
	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("copy backup %s: %w", dst, err)
	}
	s.log.WithField("path", dst).Info("created backup")
	return dst, nil
}

// PruneBackups keeps the keep most recently modified backups of each data
// file and deletes the rest. It returns the number of files removed.
func (s *Store) PruneBackups(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must not be negative, got %d", keep)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.backupDir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("list backups: %w", err)
	}

	type backupFile struct {
		name    string
		modTime time.Time
	}
	groups := make(map[string][]backupFile)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := backupName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		groups[m[1]] = append(groups[m[1]], backupFile{name: e.Name(), modTime: info.ModTime()})
	}

	removed := 0
	for stem, files := range groups {
		sort.Slice(files, func(i, j int) bool {
			if !files[i].modTime.Equal(files[j].modTime) {
				return files[i].modTime.After(files[j].modTime)
			}
			return files[i].name > files[j].name
		})
		if len(files) <= keep {
			continue
		}
		for _, f := range files[keep:] {
			path := filepath.Join(s.backupDir, f.name)
			if err := os.Remove(path); err != nil {
				return removed, fmt.Errorf("remove backup %s: %w", path, err)
			}
			removed++
			s.log.WithFields(logrus.Fields{"path": path, "group": stem}).Info("removed old backup")
		}
	}
	return removed, nil
}
