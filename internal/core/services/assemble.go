package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// assembleProfile merges detector, feature and layout outputs into one
// immutable DocumentProfile, enforcing the sub-profile presence rule.
// A violation here is a programming-contract failure, surfaced as
// ErrSchemaViolation and never coerced.
func assembleProfile(
	docID string,
	ft domain.FileType,
	path string,
	layout domain.Layout,
	sig elementSignals,
	features pdfFeatures,
	readingOrder bool,
) (*domain.DocumentProfile, error) {
	profile := &domain.DocumentProfile{
		DocID:                 docID,
		FileType:              ft,
		FilePath:              path,
		Layout:                layout,
		HasImage:              sig.hasImage,
		HasTable:              sig.hasTable,
		HasImageTable:         sig.hasImageTable,
		HasComplexTable:       sig.hasComplexTable,
		HasFormula:            sig.hasFormula,
		HasChart:              sig.hasChart,
		ImageTextMixed:        sig.imageTextMixed,
		ReadingOrderSensitive: readingOrder,
		AnnotatedAt:           time.Now().UTC(),
	}

	if ft == domain.FileTypePDF && sig.hasTable {
		profile.TableProfile = &domain.TableProfile{
			LongTable:      features.longTable,
			CrossPageTable: features.crossPageTable,
			TableDominant:  features.tableDominant,
		}
	}
	if ft == domain.FileTypePDF && sig.hasChart {
		profile.ChartProfile = &domain.ChartProfile{
			CrossPageChart: features.crossPageChart,
		}
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("assemble %s: %w", docID, err)
	}
	return profile, nil
}
