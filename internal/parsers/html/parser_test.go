package html

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// writeTestHTML writes content to a temp .html file and returns its path.
func writeTestHTML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNew(t *testing.T) {
	parser := New()
	require.NotNil(t, parser)
	assert.Equal(t, []domain.FileType{domain.FileTypeHTML}, parser.SupportedFileTypes())
}

func TestParseWithText_TableStructure(t *testing.T) {
	path := writeTestHTML(t, `<html><body>
<table>
<tr><th>City</th><th>Population</th></tr>
<tr><td>Oslo</td><td>700000</td></tr>
<tr><td>Bergen</td><td>290000</td></tr>
</table>
</body></html>`)

	result, err := New().ParseWithText(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, result.Pages, 1)
	require.Len(t, result.Pages[0].TableRegions, 1)
	region := result.Pages[0].TableRegions[0]
	assert.Equal(t, 3, region.Rows)
	assert.Equal(t, 2, region.Cols)
	assert.Equal(t, []string{"City", "Population"}, region.HeaderCells)
}

func TestParseWithText_HeaderCellsUnescaped(t *testing.T) {
	path := writeTestHTML(t, `<table>
<tr><th>Profit &amp; Loss</th><th><b>Year</b></th></tr>
<tr><td>x</td><td>y</td></tr>
</table>`)

	result, err := New().ParseWithText(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, result.Pages[0].TableRegions, 1)
	assert.Equal(t, []string{"Profit & Loss", "Year"}, result.Pages[0].TableRegions[0].HeaderCells)
}

func TestParseWithText_MultipleTables(t *testing.T) {
	path := writeTestHTML(t, `
<table><tr><td>a</td></tr></table>
<table><tr><td>a</td><td>b</td><td>c</td></tr><tr><td>d</td><td>e</td><td>f</td></tr></table>`)

	result, err := New().ParseWithText(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, result.Pages[0].TableRegions, 2)
	assert.Equal(t, 1, result.Pages[0].TableRegions[0].Cols)
	assert.Equal(t, 2, result.Pages[0].TableRegions[1].Rows)
	assert.Equal(t, 3, result.Pages[0].TableRegions[1].Cols)
}

func TestParseWithText_ImagesFormulasCharts(t *testing.T) {
	path := writeTestHTML(t, `<body>
<img src="a.png"><img src="b.png">
<math><mi>x</mi></math>
<canvas id="plot"></canvas>
<svg viewBox="0 0 1 1"></svg>
</body>`)

	result, err := New().ParseWithText(context.Background(), path)

	require.NoError(t, err)
	page := result.Pages[0]
	assert.Len(t, page.ImageRegions, 2)
	assert.Equal(t, 1, page.FormulaCount)
	assert.Len(t, page.ChartRegions, 2)
}

func TestParseWithText_StripsScriptsAndHead(t *testing.T) {
	path := writeTestHTML(t, `<html>
<head><title>Hidden Title</title></head>
<body>
<script>var secret = "code";</script>
<style>p { color: red; }</style>
<!-- a comment -->
<p>Visible &amp; kept</p>
</body></html>`)

	result, err := New().ParseWithText(context.Background(), path)

	require.NoError(t, err)
	assert.Contains(t, result.Text, "Visible & kept")
	assert.NotContains(t, result.Text, "Hidden Title")
	assert.NotContains(t, result.Text, "secret")
	assert.NotContains(t, result.Text, "color")
	assert.NotContains(t, result.Text, "a comment")
}

func TestParse_MissingFile(t *testing.T) {
	_, err := New().Parse(context.Background(), filepath.Join(t.TempDir(), "absent.html"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParseFailure)
}
