package stats

import (
	"encoding/binary"
	"math"
	"sort"
)

// TDigest is a compact, mergeable summary of a distribution's centroids,
// used to persist an approximate latency distribution in a Baseline without
// keeping every raw sample. No t-digest library is present in the retrieval
// pack (see DESIGN.md), so this is a small, standard-library-only
// implementation: a fixed-capacity, clustering digest good enough for the
// p50/p90/p95/p99 ladder this module already computes exactly — the digest
// exists for the Baseline.Statistics "optional t-digest bytes for latency"
// field, not as the source of truth for the percentile ladder itself.
type TDigest struct {
	maxCentroids int
	centroids    []centroid
}

type centroid struct {
	mean   float64
	weight float64
}

// NewTDigest constructs an empty digest with the given centroid budget.
func NewTDigest(maxCentroids int) *TDigest {
	if maxCentroids <= 0 {
		maxCentroids = 100
	}
	return &TDigest{maxCentroids: maxCentroids}
}

// Add folds one observation into the digest, compressing when the centroid
// budget is exceeded.
func (d *TDigest) Add(value float64) {
	d.centroids = append(d.centroids, centroid{mean: value, weight: 1})
	if len(d.centroids) > d.maxCentroids*4 {
		d.compress()
	}
}

func (d *TDigest) compress() {
	sort.Slice(d.centroids, func(i, j int) bool { return d.centroids[i].mean < d.centroids[j].mean })

	merged := make([]centroid, 0, d.maxCentroids)
	var totalWeight float64
	for _, c := range d.centroids {
		totalWeight += c.weight
	}
	if totalWeight == 0 {
		return
	}

	bucketSize := totalWeight / float64(d.maxCentroids)
	if bucketSize <= 0 {
		d.centroids = d.centroids[:0]
		return
	}

	var acc centroid
	var accWeight float64
	for _, c := range d.centroids {
		if accWeight+c.weight > bucketSize && acc.weight > 0 {
			merged = append(merged, acc)
			acc = centroid{}
			accWeight = 0
		}
		acc.mean = (acc.mean*acc.weight + c.mean*c.weight) / (acc.weight + c.weight)
		acc.weight += c.weight
		accWeight += c.weight
	}
	if acc.weight > 0 {
		merged = append(merged, acc)
	}
	d.centroids = merged
}

// Quantile estimates the value at quantile q in [0, 1] by walking the
// weighted centroids in mean order.
func (d *TDigest) Quantile(q float64) float64 {
	if len(d.centroids) == 0 {
		return 0
	}
	sorted := append([]centroid(nil), d.centroids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].mean < sorted[j].mean })

	var totalWeight float64
	for _, c := range sorted {
		totalWeight += c.weight
	}
	target := q * totalWeight

	var cumulative float64
	for _, c := range sorted {
		cumulative += c.weight
		if cumulative >= target {
			return c.mean
		}
	}
	return sorted[len(sorted)-1].mean
}

// Marshal serializes the digest to a compact little-endian byte form: the
// optional "t-digest bytes for latency" field persisted on a Baseline.
func (d *TDigest) Marshal() []byte {
	d.compress()
	buf := make([]byte, 4+len(d.centroids)*16)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(d.centroids)))
	offset := 4
	for _, c := range d.centroids {
		binary.LittleEndian.PutUint64(buf[offset:offset+8], math.Float64bits(c.mean))
		binary.LittleEndian.PutUint64(buf[offset+8:offset+16], math.Float64bits(c.weight))
		offset += 16
	}
	return buf
}

// UnmarshalTDigest parses bytes produced by Marshal.
func UnmarshalTDigest(data []byte) (*TDigest, error) {
	if len(data) < 4 {
		return nil, errDomain("t-digest payload too short")
	}
	count := int(binary.LittleEndian.Uint32(data[0:4]))
	expected := 4 + count*16
	if len(data) < expected {
		return nil, errDomain("t-digest payload truncated")
	}
	d := NewTDigest(count)
	offset := 4
	for i := 0; i < count; i++ {
		mean := math.Float64frombits(binary.LittleEndian.Uint64(data[offset : offset+8]))
		weight := math.Float64frombits(binary.LittleEndian.Uint64(data[offset+8 : offset+16]))
		d.centroids = append(d.centroids, centroid{mean: mean, weight: weight})
		offset += 16
	}
	return d, nil
}
