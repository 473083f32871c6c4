package domain

import "time"

// FileType identifies the source document format.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDoc  FileType = "doc"
	FileTypeXLS  FileType = "xls"
	FileTypePPT  FileType = "ppt"
	FileTypeHTML FileType = "html"
	FileTypeTXT  FileType = "txt"
	FileTypeMD   FileType = "md"
)

// ValidFileTypes lists every recognised file type in canonical order.
var ValidFileTypes = []FileType{
	FileTypePDF, FileTypeDoc, FileTypeXLS, FileTypePPT,
	FileTypeHTML, FileTypeTXT, FileTypeMD,
}

// IsValid reports whether ft is a recognised file type.
func (ft FileType) IsValid() bool {
	for _, v := range ValidFileTypes {
		if ft == v {
			return true
		}
	}
	return false
}

// Layout classifies the column structure of a document.
type Layout string

const (
	LayoutSingle Layout = "single"
	LayoutDouble Layout = "double"
	LayoutMixed  Layout = "mixed"
)

// IsValid reports whether l is a recognised layout label.
func (l Layout) IsValid() bool {
	return l == LayoutSingle || l == LayoutDouble || l == LayoutMixed
}

// TableProfile holds PDF-only cross-page table features.
// It is present on a profile only when the document is a PDF with tables.
type TableProfile struct {
	// LongTable is true when one table continues over three or more
	// consecutive pages.
	LongTable bool `json:"long_table"`

	// CrossPageTable is true when any table spans at least two
	// consecutive pages.
	CrossPageTable bool `json:"cross_page_table"`

	// TableDominant is true when table regions occupy the majority of
	// the document's page area.
	TableDominant bool `json:"table_dominant"`
}

// ChartProfile holds PDF-only chart features.
// Present only when the document is a PDF with charts.
type ChartProfile struct {
	// CrossPageChart is true when a chart continues across at least two
	// consecutive pages.
	CrossPageChart bool `json:"cross_page_chart"`
}

// DocumentProfile is the structural annotation of one source document.
// It is immutable once assembled; re-annotation produces a new record
// that supersedes the old one on disk under the same DocID.
type DocumentProfile struct {
	// DocID is the stable identifier, derived from the filename stem.
	// Unique within a corpus.
	DocID string `json:"doc_id"`

	// FileType is the declared source format.
	FileType FileType `json:"file_type"`

	// FilePath locates the source file. The profile does not own it.
	FilePath string `json:"file_path"`

	// Layout is the column-structure classification.
	Layout Layout `json:"layout"`

	HasImage              bool `json:"has_image"`
	HasTable              bool `json:"has_table"`
	HasImageTable         bool `json:"has_image_table"`
	HasComplexTable       bool `json:"has_complex_table"`
	HasFormula            bool `json:"has_formula"`
	HasChart              bool `json:"has_chart"`
	ImageTextMixed        bool `json:"image_text_mixed"`
	ReadingOrderSensitive bool `json:"reading_order_sensitive"`

	// TableProfile is set only for PDFs with tables; nil means the
	// features are not applicable, which is distinct from all-false.
	TableProfile *TableProfile `json:"table_profile,omitempty"`

	// ChartProfile is set only for PDFs with charts.
	ChartProfile *ChartProfile `json:"chart_profile,omitempty"`

	// AnnotatedAt records when the pipeline produced this profile.
	AnnotatedAt time.Time `json:"annotated_at"`
}

// Validate enforces the profile invariants: enum membership and the
// presence rule for the PDF sub-profiles.
func (p *DocumentProfile) Validate() error {
	if p.DocID == "" {
		return ErrSchemaViolation
	}
	if !p.FileType.IsValid() {
		return ErrSchemaViolation
	}
	if !p.Layout.IsValid() {
		return ErrSchemaViolation
	}
	tableApplicable := p.FileType == FileTypePDF && p.HasTable
	if tableApplicable != (p.TableProfile != nil) {
		return ErrSchemaViolation
	}
	chartApplicable := p.FileType == FileTypePDF && p.HasChart
	if chartApplicable != (p.ChartProfile != nil) {
		return ErrSchemaViolation
	}
	if p.FileType != FileTypePDF && p.ReadingOrderSensitive {
		return ErrSchemaViolation
	}
	return nil
}

// Stressors returns the document's stressor tags in canonical order.
// Layout tags are included for double and mixed layouts.
func (p *DocumentProfile) Stressors() []string {
	var tags []string
	if p.HasImage {
		tags = append(tags, StressorHasImage)
	}
	if p.HasTable {
		tags = append(tags, StressorHasTable)
	}
	if p.HasFormula {
		tags = append(tags, StressorHasFormula)
	}
	if p.HasChart {
		tags = append(tags, StressorHasChart)
	}
	if p.ImageTextMixed {
		tags = append(tags, StressorImageTextMixed)
	}
	if p.ReadingOrderSensitive {
		tags = append(tags, StressorReadingOrder)
	}
	if p.TableProfile != nil {
		if p.TableProfile.LongTable {
			tags = append(tags, StressorLongTable)
		}
		if p.TableProfile.CrossPageTable {
			tags = append(tags, StressorCrossPageTable)
		}
		if p.TableProfile.TableDominant {
			tags = append(tags, StressorTableDominant)
		}
	}
	if p.ChartProfile != nil && p.ChartProfile.CrossPageChart {
		tags = append(tags, StressorCrossPageChart)
	}
	switch p.Layout {
	case LayoutDouble:
		tags = append(tags, StressorLayoutDouble)
	case LayoutMixed:
		tags = append(tags, StressorLayoutMixed)
	}
	return tags
}

// Stressor tags used by the analyser and the sampling planner.
const (
	StressorHasImage       = "has_image"
	StressorHasTable       = "has_table"
	StressorHasFormula     = "has_formula"
	StressorHasChart       = "has_chart"
	StressorImageTextMixed = "image_text_mixed"
	StressorReadingOrder   = "reading_order_sensitive"
	StressorLongTable      = "table_profile.long_table"
	StressorCrossPageTable = "table_profile.cross_page_table"
	StressorTableDominant  = "table_profile.table_dominant"
	StressorCrossPageChart = "chart_profile.cross_page_chart"
	StressorLayoutDouble   = "layout=double"
	StressorLayoutMixed    = "layout=mixed"
	StressorUngrounded     = "ungrounded"
)
