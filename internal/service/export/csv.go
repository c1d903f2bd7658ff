package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"FinPanel/internal/domain/models"
)

// WriteCSV writes one header row (date then column ids) and one row per
// index entry. Null cells are empty.
func WriteCSV(w io.Writer, p *models.Panel) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header(p)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(p.Columns)+1)
	for i, ts := range p.Index {
		record[0] = formatIndex(ts)
		for j, c := range p.Columns {
			record[j+1] = formatValue(c.Values[i])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
