package xlsx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// createTestXLSX builds a workbook with excelize, saves it to a temp
// file and returns its path. build receives the open workbook.
func createTestXLSX(t *testing.T, build func(f *excelize.File)) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if build != nil {
		build(f)
	}

	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestNew(t *testing.T) {
	parser := New()
	require.NotNil(t, parser)
	assert.Equal(t, []domain.FileType{domain.FileTypeXLS}, parser.SupportedFileTypes())
}

func TestParseWithText_UsedRangeTable(t *testing.T) {
	path := createTestXLSX(t, func(f *excelize.File) {
		_ = f.SetCellValue("Sheet1", "A1", "Region")
		_ = f.SetCellValue("Sheet1", "B1", "Sales")
		_ = f.SetCellValue("Sheet1", "A2", "North")
		_ = f.SetCellValue("Sheet1", "B2", 120)
		_ = f.SetCellValue("Sheet1", "A3", "South")
		_ = f.SetCellValue("Sheet1", "B3", 95)
	})

	result, err := New().ParseWithText(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	require.Len(t, result.Pages[0].TableRegions, 1)
	region := result.Pages[0].TableRegions[0]
	assert.Equal(t, 3, region.Rows)
	assert.Equal(t, 2, region.Cols)
	assert.Equal(t, []string{"Region", "Sales"}, region.HeaderCells)
	assert.Contains(t, result.Text, "North")
}

func TestParseWithText_OnePagePerSheet(t *testing.T) {
	path := createTestXLSX(t, func(f *excelize.File) {
		_ = f.SetCellValue("Sheet1", "A1", "first")
		_, _ = f.NewSheet("Sheet2")
		_ = f.SetCellValue("Sheet2", "A1", "second")
	})

	result, err := New().ParseWithText(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, 1, result.Pages[0].Number)
	assert.Equal(t, 2, result.Pages[1].Number)
	assert.Equal(t, len("second"), result.Pages[1].TextLen)
}

func TestParseWithText_FormulasOnFirstSheet(t *testing.T) {
	path := createTestXLSX(t, func(f *excelize.File) {
		_ = f.SetCellValue("Sheet1", "A1", 1)
		_ = f.SetCellValue("Sheet1", "A2", 2)
		_ = f.SetCellFormula("Sheet1", "A3", "SUM(A1:A2)")
	})

	result, err := New().ParseWithText(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	assert.Equal(t, 1, result.Pages[0].FormulaCount)
}

func TestParseWithText_EmptySheetHasNoTable(t *testing.T) {
	path := createTestXLSX(t, nil)

	result, err := New().ParseWithText(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	assert.Empty(t, result.Pages[0].TableRegions)
	assert.Zero(t, result.Pages[0].TextLen)
}

func TestParse_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a workbook"), 0644))

	_, err := New().Parse(context.Background(), path)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParseFailure)
}
