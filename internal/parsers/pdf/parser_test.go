package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/text"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	parser := New()
	require.NotNil(t, parser)
	assert.Equal(t, []domain.FileType{domain.FileTypePDF}, parser.SupportedFileTypes())
}

func TestImageRegions_CarriesImageBytes(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}
	images := []reader.PageImage{
		{Name: "Im0", Width: 800, Height: 600, ColorSpace: "DeviceRGB", Data: raw},
		{Name: "Im1", Width: 100, Height: 50},
	}

	regions := imageRegions(images, defaultPageWidth, defaultPageHeight)

	require.Len(t, regions, 2)
	assert.Equal(t, raw, regions[0].Data)
	assert.Equal(t, 800, regions[0].Width)
	assert.Equal(t, 600, regions[0].Height)
	assert.Nil(t, regions[1].Data)
}

func TestImageAreaFraction(t *testing.T) {
	tests := []struct {
		name       string
		pxW, pxH   int
		pageW      float64
		pageH      float64
		want       float64
		wantAtMost float64
	}{
		{name: "half page", pxW: 306, pxH: 792, pageW: 612, pageH: 792, want: 0.5},
		{name: "oversized caps at one", pxW: 4000, pxH: 4000, pageW: 612, pageH: 792, want: 1},
		{name: "zero page area", pxW: 100, pxH: 100, pageW: 0, pageH: 792, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := imageAreaFraction(tt.pxW, tt.pxH, tt.pageW, tt.pageH)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPositionBucket(t *testing.T) {
	assert.Equal(t, "left", positionBucket(50, 612))
	assert.Equal(t, "center", positionBucket(306, 612))
	assert.Equal(t, "right", positionBucket(500, 612))
	assert.Equal(t, "center", positionBucket(50, 0))
}

func TestDetectCharts_CaptionMatching(t *testing.T) {
	fragments := []text.TextFragment{
		{Text: "Figure 3: Revenue by quarter", X: 100},
		{Text: "ordinary body text", X: 100},
		{Text: "图 2：季度收入", X: 450},
	}

	regions := detectCharts(fragments, nil, 612)

	require.Len(t, regions, 2)
	assert.Equal(t, "left", regions[0].Signature)
	assert.Equal(t, "right", regions[1].Signature)
	assert.InDelta(t, defaultChartAreaFraction, regions[0].AreaFraction, 1e-9)
}

func TestDetectCharts_LargestImageSuppliesBodyArea(t *testing.T) {
	fragments := []text.TextFragment{{Text: "Chart 1. Throughput", X: 10}}
	images := []domain.ImageRegion{
		{AreaFraction: 0.1},
		{AreaFraction: 0.6},
	}

	regions := detectCharts(fragments, images, 612)

	require.Len(t, regions, 1)
	assert.InDelta(t, 0.6, regions[0].AreaFraction, 1e-9)
}

func TestDetectCharts_NoCaptions(t *testing.T) {
	fragments := []text.TextFragment{{Text: "plain paragraph", X: 10}}

	assert.Empty(t, detectCharts(fragments, nil, 612))
}

func TestCountFormulas(t *testing.T) {
	fragments := []text.TextFragment{
		{Text: "∑ x ≥ 0"},             // two math runes
		{Text: "price ± tax"},         // one is not enough
		{Text: "the quick brown fox"}, // none
		{Text: "∫f(x)dx ≈ π"},
	}

	assert.Equal(t, 2, countFormulas(fragments))
}

func TestJoinFragments(t *testing.T) {
	fragments := []text.TextFragment{
		{Text: "Hello"},
		{Text: "world"},
	}
	assert.Equal(t, "Hello world", joinFragments(fragments))
	assert.Equal(t, "", joinFragments(nil))
}

func TestConvertFragments(t *testing.T) {
	fragments := []text.TextFragment{
		{Text: "a", X: 1, Y: 2, Width: 3, Height: 4, FontSize: 10, FontName: "Helvetica"},
	}
	converted := convertFragments(fragments)
	require.Len(t, converted, 1)
	assert.Equal(t, "a", converted[0].Text)
	assert.Equal(t, 1.0, converted[0].BBox.X)
	assert.Equal(t, "Helvetica", converted[0].FontName)
}
