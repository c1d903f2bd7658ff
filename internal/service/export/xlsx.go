package export

import (
	"fmt"
	"io"
	"sort"

	"FinPanel/internal/domain/models"

	"github.com/xuri/excelize/v2"
)

const (
	PanelSheet        = "panel"
	DescriptionsSheet = "descriptions"
)

// WriteXLSX writes a workbook with the panel on PanelSheet and, when
// descriptions is non-empty, an id/description table on DescriptionsSheet.
// Null cells are left blank.
func WriteXLSX(w io.Writer, p *models.Panel, descriptions map[string]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PanelSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writePanelSheet(f, p); err != nil {
		return err
	}
	if len(descriptions) > 0 {
		if err := writeDescriptions(f, p, descriptions); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writePanelSheet(f *excelize.File, p *models.Panel) error {
	sw, err := f.NewStreamWriter(PanelSheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	head := header(p)
	hrow := make([]interface{}, len(head))
	for i, h := range head {
		hrow[i] = h
	}
	if err := sw.SetRow("A1", hrow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, ts := range p.Index {
		row := make([]interface{}, len(p.Columns)+1)
		row[0] = formatIndex(ts)
		for j, c := range p.Columns {
			if v := c.Values[i]; v.Valid {
				row[j+1] = v.Float
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return sw.Flush()
}

func writeDescriptions(f *excelize.File, p *models.Panel, descriptions map[string]string) error {
	if _, err := f.NewSheet(DescriptionsSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	// panel columns first in panel order, then described ids that were dropped
	ids := p.ColumnIDs()
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		seen[id] = true
	}
	var extra []string
	for id := range descriptions {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	ids = append(ids, extra...)

	if err := f.SetSheetRow(DescriptionsSheet, "A1", &[]interface{}{"column", "description"}); err != nil {
		return err
	}
	for i, id := range ids {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(DescriptionsSheet, cell, &[]interface{}{id, descriptions[id]}); err != nil {
			return fmt.Errorf("write description %s: %w", id, err)
		}
	}
	return nil
}
