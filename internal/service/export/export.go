// Package export writes built panels as flat files: CSV for pipelines and an
// XLSX workbook (panel plus column descriptions) for people.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"FinPanel/internal/domain/models"
	"FinPanel/pkg/util"
)

const indexHeader = "date"

// ToFile writes p to path, choosing the format from the extension
// (.csv or .xlsx). Parent directories are created.
func ToFile(path string, p *models.Panel, descriptions map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		err = WriteCSV(f, p)
	case ".xlsx":
		err = WriteXLSX(f, p, descriptions)
	default:
		err = fmt.Errorf("unsupported export format %q", ext)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// formatIndex prints dates as YYYY-MM-DD and anything with a time of day
// as RFC 3339.
func formatIndex(t time.Time) string {
	t = t.UTC()
	if t.Equal(util.DateOf(t)) {
		return util.FormatDate(t)
	}
	return t.Format(time.RFC3339Nano)
}

func formatValue(v models.Value) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float, 'g', -1, 64)
}

func header(p *models.Panel) []string {
	return append([]string{indexHeader}, p.ColumnIDs()...)
}
