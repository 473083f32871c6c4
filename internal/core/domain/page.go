package domain

// PageRecord is one page, slide or sheet produced by a structural
// parser. All parsers emit the same record shape so the detection
// pipeline is format-agnostic.
type PageRecord struct {
	// Number is the 1-indexed page position in document order.
	Number int

	// Width and Height are page dimensions in points, zero when the
	// format has no fixed geometry.
	Width  float64
	Height float64

	// TextLen is the count of extractable text characters on the page.
	TextLen int

	// ColumnCount is the detected text column count; zero means the
	// parser exposes no geometry.
	ColumnCount int

	// MultiColumn is true when the page lays text out in two or more
	// columns.
	MultiColumn bool

	ImageRegions []ImageRegion
	TableRegions []TableRegion
	ChartRegions []ChartRegion
	FormulaCount int
}

// ImageRegion is an embedded raster image on a page.
type ImageRegion struct {
	// Width and Height are pixel dimensions of the embedded image.
	Width  int
	Height int

	// AreaFraction is the fraction of the page area the image covers,
	// zero when the format exposes no placement.
	AreaFraction float64

	// Data holds the raw encoded image bytes when the source format
	// exposes them. Nil for formats that only report placement, in
	// which case visual probes fall back to the geometric heuristic.
	Data []byte
}

// TableRegion is a structured table detected on a page.
type TableRegion struct {
	Rows int
	Cols int

	// AreaFraction is the fraction of the page area the table covers.
	AreaFraction float64

	// HeaderCells holds the first-row cell texts, used to match table
	// continuations across page boundaries. May be empty.
	HeaderCells []string
}

// ChartRegion is a chart or vector figure detected on a page.
type ChartRegion struct {
	AreaFraction float64

	// Signature is a coarse placement key used to detect the same
	// chart continuing on the next page.
	Signature string
}

// IsComplex applies the fixed complex-table policy: more than ten
// columns, more than a hundred rows, or at least seven columns with
// more than twenty rows. The thresholds are identical for every format
// that exposes row and column counts.
func (t TableRegion) IsComplex() bool {
	if t.Cols > 10 {
		return true
	}
	if t.Rows > 100 {
		return true
	}
	return t.Cols >= 7 && t.Rows > 20
}
