package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"FinPanel/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func samplePanel() *models.Panel {
	return &models.Panel{
		Index: []time.Time{day("2024-01-01"), day("2024-01-02"), day("2024-01-03")},
		Columns: []models.Column{
			{ID: "A", Values: []models.Value{models.Some(1), models.Null, models.Some(2.5)}},
			{ID: "B", Values: []models.Value{models.Null, models.Some(10), models.Some(0.125)}},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, samplePanel()))

	want := "date,A,B\n" +
		"2024-01-01,1,\n" +
		"2024-01-02,,10\n" +
		"2024-01-03,2.5,0.125\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_IntradayIndex(t *testing.T) {
	p := &models.Panel{
		Index:   []time.Time{time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)},
		Columns: []models.Column{{ID: "A", Values: []models.Value{models.Some(1)}}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, p))
	assert.Equal(t, "date,A\n2024-01-01T15:30:00Z,1\n", buf.String())
}

func TestWriteCSV_EmptyPanel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, &models.Panel{}))
	assert.Equal(t, "date\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	desc := map[string]string{"A": "Series A", "Z": "dropped"}
	require.NoError(t, WriteXLSX(&buf, samplePanel(), desc))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(PanelSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"date", "A", "B"}, rows[0])
	assert.Equal(t, "2024-01-01", rows[1][0])
	assert.Equal(t, "1", rows[1][1])
	assert.Equal(t, []string{"2024-01-02", "", "10"}, rows[2])
	assert.Equal(t, []string{"2024-01-03", "2.5", "0.125"}, rows[3])

	drows, err := f.GetRows(DescriptionsSheet)
	require.NoError(t, err)
	require.Len(t, drows, 4)
	assert.Equal(t, []string{"column", "description"}, drows[0])
	assert.Equal(t, []string{"A", "Series A"}, drows[1])
	assert.Equal(t, []string{"B"}, drows[2])
	assert.Equal(t, []string{"Z", "dropped"}, drows[3])
}

func TestWriteXLSX_NoDescriptions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, samplePanel(), nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{PanelSheet}, f.GetSheetList())
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "out", "fred.csv")
	require.NoError(t, ToFile(csvPath, samplePanel(), nil))
	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(b), "date,A,B")

	xlsxPath := filepath.Join(dir, "out", "fred.xlsx")
	require.NoError(t, ToFile(xlsxPath, samplePanel(), map[string]string{"A": "a"}))
	_, err = os.Stat(xlsxPath)
	require.NoError(t, err)

	badPath := filepath.Join(dir, "fred.parquet")
	require.Error(t, ToFile(badPath, samplePanel(), nil))
	_, err = os.Stat(badPath)
	assert.True(t, os.IsNotExist(err))
}
