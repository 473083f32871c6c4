package reports

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// InventoryFile is the flat corpus inventory filename.
const InventoryFile = "files.csv"

// WriteInventory writes the flat per-document inventory to path, one
// row per profile in the given order, for spreadsheet triage.
func WriteInventory(path string, profiles []*domain.DocumentProfile) error {
	records := [][]string{{
		"doc_id", "path", "file_type", "layout",
		"has_image", "has_table", "has_image_table", "has_complex_table",
		"has_formula", "has_chart", "image_text_mixed", "reading_order_sensitive",
		"stressors",
	}}

	for _, p := range profiles {
		records = append(records, []string{
			p.DocID,
			p.FilePath,
			string(p.FileType),
			string(p.Layout),
			strconv.FormatBool(p.HasImage),
			strconv.FormatBool(p.HasTable),
			strconv.FormatBool(p.HasImageTable),
			strconv.FormatBool(p.HasComplexTable),
			strconv.FormatBool(p.HasFormula),
			strconv.FormatBool(p.HasChart),
			strconv.FormatBool(p.ImageTextMixed),
			strconv.FormatBool(p.ReadingOrderSensitive),
			strings.Join(p.Stressors(), "+"),
		})
	}

	return writeCSV(path, records)
}
