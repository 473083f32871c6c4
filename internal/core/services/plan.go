package services

import (
	"math/rand"
	"sort"

	"github.com/custodia-labs/ragbench-cli/internal/core/domain"
)

// defaultSeed keeps unseeded runs reproducible rather than random.
const defaultSeed int64 = 20260204

// planner converts bucket structure and quotas into a deterministic
// sample plan. All randomness flows from the single seeded generator
// passed in; buckets are visited strictly in canonical order, so the
// plan is bit-reproducible for a fixed seed and profile set.
type planner struct {
	rng              *rand.Rand
	allowReplacement bool
	seed             int64
}

// newPlanner creates a planner around one seeded generator.
func newPlanner(seed int64, allowReplacement bool) *planner {
	if seed == 0 {
		seed = defaultSeed
	}
	return &planner{
		rng:              rand.New(rand.NewSource(seed)),
		allowReplacement: allowReplacement,
		seed:             seed,
	}
}

// plan allocates perFileType across each file type's stressor
// combination buckets and selects documents.
func (p *planner) plan(buckets []*domain.Bucket, perFileType int) *domain.SamplePlan {
	ordered := make([]*domain.Bucket, len(buckets))
	copy(ordered, buckets)
	domain.SortBuckets(ordered)

	byType := make(map[domain.FileType][]*domain.Bucket)
	var types []domain.FileType
	for _, bucket := range ordered {
		if _, ok := byType[bucket.Key.FileType]; !ok {
			types = append(types, bucket.Key.FileType)
		}
		byType[bucket.Key.FileType] = append(byType[bucket.Key.FileType], bucket)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	result := &domain.SamplePlan{Seed: p.seed}

	for _, ft := range types {
		group := byType[ft]
		quotas := evenShares(perFileType, len(group))

		for i, bucket := range group {
			plan := p.fillBucket(bucket, quotas[i], group)
			result.Buckets = append(result.Buckets, plan)

			if len(plan.DocIDs) < plan.Quota {
				result.Deficits = append(result.Deficits, domain.QuotaDeficit{
					Bucket:    bucket.Key,
					Requested: plan.Quota,
					Available: len(plan.DocIDs),
					Shortfall: plan.Quota - len(plan.DocIDs),
				})
			}
		}
	}
	return result
}

// fillBucket selects quota documents for one bucket, resolving
// deficits by backfill first, then with-replacement, then reporting.
func (p *planner) fillBucket(bucket *domain.Bucket, quota int, siblings []*domain.Bucket) domain.BucketPlan {
	plan := domain.BucketPlan{Key: bucket.Key, Quota: quota}
	if quota <= 0 {
		return plan
	}

	// Primary picks: a seeded without-replacement draw from the bucket.
	plan.DocIDs = p.sample(bucket.DocIDs, quota)

	// Backfill from sibling combinations differing by one stressor.
	if len(plan.DocIDs) < quota {
		for _, sibling := range siblings {
			if len(plan.DocIDs) >= quota {
				break
			}
			if sibling.Key == bucket.Key || !adjacentCombos(bucket.Key, sibling.Key) {
				continue
			}
			need := quota - len(plan.DocIDs)
			picked := p.sample(sibling.DocIDs, need)
			plan.DocIDs = append(plan.DocIDs, picked...)
			plan.Backfilled += len(picked)
		}
	}

	// With-replacement picks from the original bucket.
	if len(plan.DocIDs) < quota && p.allowReplacement && len(bucket.DocIDs) > 0 {
		for len(plan.DocIDs) < quota {
			idx := p.rng.Intn(len(bucket.DocIDs))
			plan.DocIDs = append(plan.DocIDs, bucket.DocIDs[idx])
			plan.Repeated++
		}
	}

	return plan
}

// sample draws up to n documents without replacement, preserving a
// seeded shuffle of the bucket's scan order.
func (p *planner) sample(docIDs []string, n int) []string {
	if n <= 0 || len(docIDs) == 0 {
		return nil
	}
	shuffled := make([]string, len(docIDs))
	copy(shuffled, docIDs)
	p.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// evenShares splits total across n buckets, remainder to the earliest.
func evenShares(total, n int) []int {
	shares := make([]int, n)
	if n == 0 {
		return shares
	}
	base := total / n
	rem := total % n
	for i := range shares {
		shares[i] = base
		if i < rem {
			shares[i]++
		}
	}
	return shares
}

// adjacentCombos reports whether two keys differ by exactly one
// stressor, the configurable adjacency used for backfill.
func adjacentCombos(a, b domain.BucketKey) bool {
	if a.FileType != b.FileType {
		return false
	}
	as := a.Stressors()
	bs := b.Stressors()

	diff := len(symmetricDiff(as, bs))
	return diff == 1
}

// symmetricDiff returns tags present in exactly one of the two sets.
func symmetricDiff(a, b []string) []string {
	inA := make(map[string]bool, len(a))
	for _, tag := range a {
		inA[tag] = true
	}
	inB := make(map[string]bool, len(b))
	for _, tag := range b {
		inB[tag] = true
	}

	var diff []string
	for _, tag := range a {
		if !inB[tag] {
			diff = append(diff, tag)
		}
	}
	for _, tag := range b {
		if !inA[tag] {
			diff = append(diff, tag)
		}
	}
	return diff
}
