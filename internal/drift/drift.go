package drift

import (
	"fmt"
	"sort"

	"github.com/wireparity/wireparity/internal/scenario"
)

// Bucket classifies a collection's drift score.
type Bucket string

const (
	BucketOK   Bucket = "OK"
	BucketWarn Bucket = "WARN"
	BucketFail Bucket = "FAIL"
)

// Score weights. Row-count movement dominates because a shrinking or
// growing fixture usually explains the per-field movement too.
const (
	weightRowCount     = 0.4
	weightNull         = 0.2
	weightCardinality  = 0.2
	weightDistribution = 0.2
)

// Config holds the bucket thresholds. A zero Config gets defaults.
type Config struct {
	WarnThreshold float64
	FailThreshold float64
}

// DefaultConfig warns at 0.25 and fails at 0.5.
func DefaultConfig() Config {
	return Config{WarnThreshold: 0.25, FailThreshold: 0.5}
}

func (c Config) withDefaults() Config {
	if c.WarnThreshold == 0 && c.FailThreshold == 0 {
		return DefaultConfig()
	}
	return c
}

// FieldDrift holds the per-field deltas between two snapshots.
type FieldDrift struct {
	Field             string  `json:"field"`
	NullDelta         float64 `json:"nullDelta"`
	CardinalityDelta  float64 `json:"cardinalityDelta"`
	DistributionDelta float64 `json:"distributionDelta"`
}

// CollectionDrift is the drift verdict for one fixture collection.
type CollectionDrift struct {
	Collection    string       `json:"collection"`
	BaselineRows  int          `json:"baselineRows"`
	CurrentRows   int          `json:"currentRows"`
	RowCountDelta float64      `json:"rowCountDelta"`
	Fields        []FieldDrift `json:"fields"`
	Score         float64      `json:"score"`
	Bucket        Bucket       `json:"bucket"`
}

// ScoreCollection compares two snapshots of one collection field by
// field. Per top-level field it computes the null-ratio delta, the
// normalized cardinality delta, and the total-variation distance
// between value-distribution histograms; the weighted sum of the field
// averages and the row-count delta yields a 0-1 drift score.
func ScoreCollection(name string, baseline, current []scenario.Document, cfg Config) (*CollectionDrift, error) {
	if name == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	cfg = cfg.withDefaults()
	if cfg.WarnThreshold <= 0 || cfg.FailThreshold <= 0 || cfg.WarnThreshold > cfg.FailThreshold {
		return nil, fmt.Errorf("invalid thresholds: warn=%v fail=%v", cfg.WarnThreshold, cfg.FailThreshold)
	}

	drift := &CollectionDrift{
		Collection:   name,
		BaselineRows: len(baseline),
		CurrentRows:  len(current),
	}
	drift.RowCountDelta = normalizedDelta(float64(len(baseline)), float64(len(current)))

	fields := unionFields(baseline, current)
	var nullSum, cardSum, distSum float64
	for _, field := range fields {
		fd := scoreField(field, baseline, current)
		drift.Fields = append(drift.Fields, fd)
		nullSum += fd.NullDelta
		cardSum += fd.CardinalityDelta
		distSum += fd.DistributionDelta
	}

	var avgNull, avgCard, avgDist float64
	if len(fields) > 0 {
		n := float64(len(fields))
		avgNull, avgCard, avgDist = nullSum/n, cardSum/n, distSum/n
	}

	drift.Score = weightRowCount*drift.RowCountDelta +
		weightNull*avgNull +
		weightCardinality*avgCard +
		weightDistribution*avgDist

	switch {
	case drift.Score >= cfg.FailThreshold:
		drift.Bucket = BucketFail
	case drift.Score >= cfg.WarnThreshold:
		drift.Bucket = BucketWarn
	default:
		drift.Bucket = BucketOK
	}
	return drift, nil
}

func scoreField(field string, baseline, current []scenario.Document) FieldDrift {
	baseNulls, baseHist := fieldHistogram(field, baseline)
	currNulls, currHist := fieldHistogram(field, current)

	fd := FieldDrift{Field: field}
	fd.NullDelta = absFloat(ratio(baseNulls, len(baseline)) - ratio(currNulls, len(current)))
	fd.CardinalityDelta = normalizedDelta(float64(len(baseHist)), float64(len(currHist)))
	fd.DistributionDelta = totalVariation(baseHist, currHist)
	return fd
}

// fieldHistogram counts canonical value occurrences for one field.
// Missing keys and explicit nulls both count toward the null ratio:
// for fixture drift the interesting signal is "value stopped being
// populated", whichever way it happens.
func fieldHistogram(field string, docs []scenario.Document) (nulls int, hist map[string]int) {
	hist = make(map[string]int)
	for _, doc := range docs {
		v, ok := doc[field]
		if !ok {
			nulls++
			continue
		}
		if _, isNull := v.(scenario.Null); isNull {
			nulls++
			continue
		}
		data, err := scenario.MarshalCanonical(v)
		if err != nil {
			data = []byte(fmt.Sprintf("%v", v))
		}
		hist[string(data)]++
	}
	return nulls, hist
}

// totalVariation computes the total-variation distance between the two
// value distributions: half the L1 distance between the normalized
// histograms. Ranges over [0, 1].
func totalVariation(a, b map[string]int) float64 {
	totalA, totalB := 0, 0
	for _, n := range a {
		totalA += n
	}
	for _, n := range b {
		totalB += n
	}
	if totalA == 0 && totalB == 0 {
		return 0
	}

	keys := make(map[string]bool, len(a)+len(b))
	for k := range a {
		keys[k] = true
	}
	for k := range b {
		keys[k] = true
	}

	var sum float64
	for k := range keys {
		pa := ratio(a[k], totalA)
		pb := ratio(b[k], totalB)
		sum += absFloat(pa - pb)
	}
	return sum / 2
}

func unionFields(baseline, current []scenario.Document) []string {
	seen := make(map[string]bool)
	for _, doc := range baseline {
		for k := range doc {
			seen[k] = true
		}
	}
	for _, doc := range current {
		for k := range doc {
			seen[k] = true
		}
	}
	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func normalizedDelta(a, b float64) float64 {
	max := a
	if b > max {
		max = b
	}
	if max == 0 {
		return 0
	}
	return absFloat(a-b) / max
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
