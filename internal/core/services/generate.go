package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragbench-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragbench-cli/internal/logger"
)

// defaultMix is the behaviour distribution used when the caller does
// not supply one.
var defaultMix = driving.BehaviorMix{
	Answer:           0.75,
	Partial:          0.10,
	Refuse:           0.10,
	AskClarification: 0.05,
}

// fallbackTopic is used for ungrounded queries where no topic could be
// extracted from the document text.
const fallbackTopic = "the main subject of the document"

// GenerateService synthesises evaluation queries from annotated
// profiles. Selection is driven by the sampling planner; query text is
// keyed on the bucket's stressor set so each query exercises the
// retrieval challenge its document was selected for.
type GenerateService struct {
	store   driven.ProfileStore
	parsers driven.ParserRegistry
}

var _ driving.GenerationService = (*GenerateService)(nil)

// NewGenerateService creates a query synthesizer. The parser registry
// is optional; without it grounding falls back to template slots.
func NewGenerateService(store driven.ProfileStore, parsers driven.ParserRegistry) *GenerateService {
	return &GenerateService{store: store, parsers: parsers}
}

// Generate samples documents per the plan and emits one or more
// queries per selected document. The same seed always produces the
// same output, byte for byte.
func (s *GenerateService) Generate(ctx context.Context, opts driving.GenerateOptions) (*driving.GenerateResult, error) {
	if opts.PerFileType <= 0 {
		return nil, fmt.Errorf("%w: per-file-type count must be positive", domain.ErrInvalidInput)
	}
	if opts.QueriesPerDoc <= 0 {
		opts.QueriesPerDoc = 1
	}
	if opts.Domain == "" {
		opts.Domain = "hr"
	}
	mix := opts.Mix
	if mix == (driving.BehaviorMix{}) {
		mix = defaultMix
	}
	if err := validateMix(mix); err != nil {
		return nil, err
	}

	profiles, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: no annotated documents", domain.ErrNotFound)
	}

	byID := make(map[string]*domain.DocumentProfile, len(profiles))
	for _, p := range profiles {
		byID[p.DocID] = p
	}

	buckets := BuildBuckets(profiles)
	planner := newPlanner(opts.Seed, opts.AllowReplacement)
	plan := planner.plan(buckets, opts.PerFileType)

	result := &driving.GenerateResult{Plan: plan, Deficits: plan.Deficits}

	for _, bp := range plan.Buckets {
		for _, docID := range bp.DocIDs {
			profile, ok := byID[docID]
			if !ok {
				continue
			}
			topics, grounded := s.topicsFor(ctx, profile, opts.Grounding)
			for i := 0; i < opts.QueriesPerDoc; i++ {
				query := s.synthesize(planner, profile, bp.Key, topics, grounded, mix, opts.Domain)
				query.ID = fmt.Sprintf("q_%06d", len(result.Queries)+1)
				result.Queries = append(result.Queries, query)
				if grounded {
					result.Grounded++
				}
			}
		}
	}

	logger.Info("generated %d queries across %d buckets (seed %d)",
		len(result.Queries), len(plan.Buckets), plan.Seed)
	return result, nil
}

// topicsFor extracts grounding topics from the document text. Returns
// the topic list and whether grounding succeeded.
func (s *GenerateService) topicsFor(ctx context.Context, profile *domain.DocumentProfile, grounding bool) ([]string, bool) {
	if !grounding || s.parsers == nil {
		return nil, false
	}
	res, err := s.parsers.ParseWithText(ctx, profile.FilePath, profile.FileType)
	if err != nil {
		logger.Debug("grounding parse failed for %s: %v", profile.DocID, err)
		return nil, false
	}
	topics := extractTopics(res.Text)
	if len(topics) == 0 {
		return nil, false
	}
	return topics, true
}

// synthesize builds a single query record. All randomness draws from
// the planner's generator so output stays reproducible.
func (s *GenerateService) synthesize(p *planner, profile *domain.DocumentProfile, key domain.BucketKey, topics []string, grounded bool, mix driving.BehaviorMix, domainLabel string) *domain.QueryRecord {
	behavior := drawBehavior(p, mix)

	topic := fallbackTopic
	if len(topics) > 0 {
		topic = topics[p.rng.Intn(len(topics))]
	}

	stressors := key.Stressors()
	text := queryText(p, behavior, stressors, topic)

	record := &domain.QueryRecord{
		Query:            text,
		Domain:           domainLabel,
		ExpectedBehavior: behavior,
		DocAnnotation: domain.DocAnnotation{
			DocID:        profile.DocID,
			FileType:     profile.FileType,
			Layout:       profile.Layout,
			TableProfile: profile.TableProfile,
		},
		Stressors: stressors,
	}
	if !grounded {
		record.Stressors = append(append([]string{}, stressors...), domain.StressorUngrounded)
	}

	switch behavior {
	case domain.BehaviorRefuse:
		// Refusal queries ask about content the document must not be
		// made to answer; the topic is forbidden, not required.
		record.ForbiddenChunks = []string{chunkID(profile.DocID, 1)}
		record.AnswerConstraints = domain.AnswerConstraints{MustNotMention: []string{topic}}
	case domain.BehaviorPartial:
		record.RequiredChunks = []string{chunkID(profile.DocID, 1)}
		record.OptionalChunks = []string{chunkID(profile.DocID, 2)}
		if grounded {
			record.AnswerConstraints = domain.AnswerConstraints{MustMention: []string{topic}}
		}
	default:
		record.RequiredChunks = []string{chunkID(profile.DocID, 1)}
		if grounded && behavior == domain.BehaviorAnswer {
			record.AnswerConstraints = domain.AnswerConstraints{MustMention: []string{topic}}
		}
	}
	return record
}

// drawBehavior picks an expected behaviour from the mix using the
// planner's generator.
func drawBehavior(p *planner, mix driving.BehaviorMix) domain.ExpectedBehavior {
	roll := p.rng.Float64()
	switch {
	case roll < mix.Answer:
		return domain.BehaviorAnswer
	case roll < mix.Answer+mix.Partial:
		return domain.BehaviorPartial
	case roll < mix.Answer+mix.Partial+mix.Refuse:
		return domain.BehaviorRefuse
	default:
		return domain.BehaviorAskClarification
	}
}

// validateMix checks the behaviour ratios sum to one.
func validateMix(mix driving.BehaviorMix) error {
	sum := mix.Answer + mix.Partial + mix.Refuse + mix.AskClarification
	if math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("%w: behaviour mix ratios sum to %.3f, want 1.0", domain.ErrInvalidInput, sum)
	}
	if mix.Answer < 0 || mix.Partial < 0 || mix.Refuse < 0 || mix.AskClarification < 0 {
		return fmt.Errorf("%w: behaviour mix ratios must be non-negative", domain.ErrInvalidInput)
	}
	return nil
}

// queryText picks a template keyed on the bucket's stressors and the
// expected behaviour, then fills the topic slot.
func queryText(p *planner, behavior domain.ExpectedBehavior, stressors []string, topic string) string {
	if behavior == domain.BehaviorAskClarification {
		return fmt.Sprintf("Tell me about the thing related to %s.", topic)
	}
	if behavior == domain.BehaviorRefuse {
		return fmt.Sprintf("What confidential details beyond %s does this document reveal?", topic)
	}

	templates := templatesFor(stressors)
	return fmt.Sprintf(templates[p.rng.Intn(len(templates))], topic)
}

// templatesFor returns query templates matching the strongest stressor
// in the set. Order of checks reflects specificity, not tag order.
func templatesFor(stressors []string) []string {
	has := func(tag string) bool {
		for _, s := range stressors {
			if s == tag {
				return true
			}
		}
		return false
	}

	switch {
	case has(domain.StressorCrossPageTable) || has(domain.StressorLongTable):
		return []string{
			"Summarise the figures for %s across the full table, including the rows continued on later pages.",
			"What is the total reported for %s when all pages of the table are combined?",
			"List every row of the table that mentions %s.",
		}
	case has(domain.StressorTableDominant):
		return []string{
			"Which entry in the tables corresponds to %s, and what values are given for it?",
			"Compare the tabulated values for %s against the other entries.",
		}
	case has(domain.StressorHasTable):
		return []string{
			"What does the table report about %s?",
			"Which value is listed for %s in the table?",
		}
	case has(domain.StressorCrossPageChart):
		return []string{
			"How does the trend for %s shown in the chart continue on the following page?",
			"Describe the full series for %s across the charts on consecutive pages.",
		}
	case has(domain.StressorHasChart):
		return []string{
			"What does the chart indicate about %s?",
			"Which category in the chart has the highest value for %s?",
		}
	case has(domain.StressorHasFormula):
		return []string{
			"Explain the formula involving %s and what each term represents.",
			"What result does the equation for %s produce?",
		}
	case has(domain.StressorImageTextMixed):
		return []string{
			"Combine the figure and the surrounding text to explain %s.",
			"What does the image add to the written description of %s?",
		}
	case has(domain.StressorHasImage):
		return []string{
			"What is shown in the image related to %s?",
		}
	case has(domain.StressorReadingOrder):
		return []string{
			"Following the document in order, what is stated about %s after the multi-column section?",
			"What conclusion does the document reach about %s once the columns are read in sequence?",
		}
	case has(domain.StressorLayoutDouble) || has(domain.StressorLayoutMixed):
		return []string{
			"What does the document say about %s?",
			"Summarise the section discussing %s.",
		}
	default:
		return []string{
			"What does the document say about %s?",
			"Summarise the key points about %s.",
			"According to the document, what is %s?",
		}
	}
}

// chunkID builds a chunk reference of the form doc_id#pN.
func chunkID(docID string, page int) string {
	return fmt.Sprintf("%s#p%d", strings.TrimSpace(docID), page)
}
