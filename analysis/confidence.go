package analysis

import "math"

// Confidence scores how statistically reliable a pattern set is, in [0,1].
//
// Two factors multiply:
//
//   - consistency: the mean over all observed fields of |2r-1|, where r is
//     the field's population rate. A field that is always present (r=1) or
//     always absent (r=0) is fully consistent; a coin-flip field (r=0.5)
//     contributes nothing.
//   - saturation: n/(n+10) over the sample size, so small corpora score low
//     and the score approaches the consistency as the corpus grows.
//
// Empty patterns or a non-positive sample size score 0 rather than erroring;
// callers can treat 0 as "insufficient data".
func Confidence(p *FieldPatterns, sampleSize int) float64 {
	if p == nil || sampleSize <= 0 {
		return 0
	}

	sum := 0.0
	fields := 0
	for _, positions := range p.Segments {
		for _, f := range positions {
			if f.Total == 0 {
				continue
			}
			sum += math.Abs(2*f.Rate() - 1)
			fields++
		}
	}
	if fields == 0 {
		return 0
	}

	consistency := sum / float64(fields)
	saturation := float64(sampleSize) / float64(sampleSize+10)
	return clamp01(consistency * saturation)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
