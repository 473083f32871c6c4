package domain

import (
	"sort"
	"strings"
)

// BucketKey identifies a sampling bucket: a file type plus the set of
// stressor tags shared by every document in the bucket.
type BucketKey struct {
	FileType FileType `json:"file_type"`

	// StressorSet is the sorted, "+"-joined stressor tags. An empty
	// string means the plain bucket with no stressors.
	StressorSet string `json:"stressor_set"`
}

// NewBucketKey builds a key from unordered stressor tags.
func NewBucketKey(ft FileType, stressors []string) BucketKey {
	tags := make([]string, len(stressors))
	copy(tags, stressors)
	sort.Strings(tags)
	return BucketKey{FileType: ft, StressorSet: strings.Join(tags, "+")}
}

// Stressors returns the key's tags as a slice, empty for the plain bucket.
func (k BucketKey) Stressors() []string {
	if k.StressorSet == "" {
		return nil
	}
	return strings.Split(k.StressorSet, "+")
}

// Less orders keys canonically: file type first, then stressor set
// lexicographically. Sampling traverses buckets in this order so plans
// do not depend on map iteration order.
func (k BucketKey) Less(other BucketKey) bool {
	if k.FileType != other.FileType {
		return k.FileType < other.FileType
	}
	return k.StressorSet < other.StressorSet
}

// String renders the key for reports and logs.
func (k BucketKey) String() string {
	if k.StressorSet == "" {
		return string(k.FileType)
	}
	return string(k.FileType) + "/" + k.StressorSet
}

// Bucket groups the documents sharing one key. DocIDs keep scan order.
// Buckets are ephemeral, recomputed from the profile set on every run.
type Bucket struct {
	Key    BucketKey `json:"key"`
	DocIDs []string  `json:"doc_ids"`
}

// Count returns the number of documents in the bucket.
func (b *Bucket) Count() int { return len(b.DocIDs) }

// SortBuckets orders a bucket slice canonically in place.
func SortBuckets(buckets []*Bucket) {
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Key.Less(buckets[j].Key)
	})
}

// QuotaDeficit reports a bucket whose quota could not be met after
// backfill and with-replacement policies were applied. It is a report
// entry, not an error: generation proceeds with the shortfall explicit.
type QuotaDeficit struct {
	Bucket    BucketKey `json:"bucket"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
	Shortfall int       `json:"shortfall"`
}

// BucketPlan is the planner's selection for one bucket.
type BucketPlan struct {
	Key   BucketKey `json:"key"`
	Quota int       `json:"quota"`

	// DocIDs are the selected documents. Shorter than Quota only when
	// a matching QuotaDeficit is reported.
	DocIDs []string `json:"doc_ids"`

	// Backfilled counts picks taken from sibling buckets.
	Backfilled int `json:"backfilled,omitempty"`

	// Repeated counts with-replacement duplicates.
	Repeated int `json:"repeated,omitempty"`
}

// SamplePlan is the full deterministic selection for one generation run.
type SamplePlan struct {
	Seed     int64          `json:"seed"`
	Buckets  []BucketPlan   `json:"buckets"`
	Deficits []QuotaDeficit `json:"deficits,omitempty"`
}

// TotalSelected sums the selected documents across all buckets.
func (p *SamplePlan) TotalSelected() int {
	n := 0
	for _, b := range p.Buckets {
		n += len(b.DocIDs)
	}
	return n
}
