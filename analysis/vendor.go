package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// VendorProfile is a known sending system's fingerprint: its identity plus
// the field population patterns its traffic exhibits.
type VendorProfile struct {
	// Vendor is the vendor name (e.g. "Epic").
	Vendor string `json:"vendor"`

	// System optionally names the product or installation.
	System string `json:"system,omitempty"`

	// Fingerprint is the reference pattern set.
	Fingerprint *FieldPatterns `json:"fingerprint"`
}

// Headers is the sending identity extracted from observed traffic.
type Headers struct {
	SendingApplication string
	SendingFacility    string
}

// FieldContribution records how much one field's similarity contributed to
// a match score.
type FieldContribution struct {
	// Field is the SEGMENT.POSITION path.
	Field string `json:"field"`

	// Score is the per-field similarity in [0,1].
	Score float64 `json:"score"`
}

// VendorSignature is the outcome of a detection call. When nothing scores
// above the detector's threshold, Matched is false and Confidence zero;
// a failed match is a result, never an error.
type VendorSignature struct {
	Vendor        string              `json:"vendor,omitempty"`
	System        string              `json:"system,omitempty"`
	Confidence    float64             `json:"confidence"`
	Matched       bool                `json:"matched"`
	Contributions []FieldContribution `json:"contributions,omitempty"`
}

// headerWeight is the share of the score carried by the sending identity;
// the rest comes from field-pattern similarity.
const headerWeight = 0.3

// Detector matches observed patterns against registered vendor profiles.
type Detector struct {
	profiles      []VendorProfile
	minConfidence float64
}

// NewDetector creates a Detector. Matches scoring below minConfidence are
// reported as no-match.
func NewDetector(minConfidence float64, profiles ...VendorProfile) *Detector {
	return &Detector{profiles: profiles, minConfidence: minConfidence}
}

// Register adds a profile to the detector.
func (d *Detector) Register(p VendorProfile) {
	d.profiles = append(d.profiles, p)
}

// Profiles returns the registered profiles.
func (d *Detector) Profiles() []VendorProfile {
	return d.profiles
}

// Detect scores the observed headers and patterns against every registered
// profile and returns the best match, or a zero-confidence no-match when
// nothing clears the threshold.
func (d *Detector) Detect(headers Headers, patterns *FieldPatterns) VendorSignature {
	best := VendorSignature{}
	for _, profile := range d.profiles {
		score, contributions := d.score(profile, headers, patterns)
		if score > best.Confidence {
			best = VendorSignature{
				Vendor:        profile.Vendor,
				System:        profile.System,
				Confidence:    score,
				Contributions: contributions,
			}
		}
	}
	if best.Confidence < d.minConfidence {
		return VendorSignature{}
	}
	best.Matched = true
	return best
}

// score combines header-identity similarity with per-field pattern
// similarity for one profile.
func (d *Detector) score(profile VendorProfile, headers Headers, patterns *FieldPatterns) (float64, []FieldContribution) {
	fieldScore, contributions := patternSimilarity(profile.Fingerprint, patterns)
	header := headerSimilarity(profile, headers)
	return clamp01(headerWeight*header + (1-headerWeight)*fieldScore), contributions
}

// headerSimilarity checks the sending application and facility against the
// profile's vendor and system names.
func headerSimilarity(profile VendorProfile, headers Headers) float64 {
	names := []string{profile.Vendor, profile.System}
	observed := []string{headers.SendingApplication, headers.SendingFacility}

	hits, checks := 0, 0
	for _, name := range names {
		if name == "" {
			continue
		}
		checks++
		for _, o := range observed {
			if o != "" && strings.Contains(strings.ToUpper(o), strings.ToUpper(name)) {
				hits++
				break
			}
		}
	}
	if checks == 0 {
		return 0
	}
	return float64(hits) / float64(checks)
}

// patternSimilarity compares population rates field by field over the union
// of both pattern sets. Each field scores 1 minus the absolute rate
// difference; fields present in only one side compare against zero.
func patternSimilarity(reference, observed *FieldPatterns) (float64, []FieldContribution) {
	if reference == nil || observed == nil {
		return 0, nil
	}

	type key struct {
		segment  string
		position int
	}
	union := make(map[key]struct{})
	for segment, fields := range reference.Segments {
		for position := range fields {
			union[key{segment, position}] = struct{}{}
		}
	}
	for segment, fields := range observed.Segments {
		for position := range fields {
			union[key{segment, position}] = struct{}{}
		}
	}
	if len(union) == 0 {
		return 0, nil
	}

	contributions := make([]FieldContribution, 0, len(union))
	sum := 0.0
	for k := range union {
		refRate := reference.Frequency(k.segment, k.position).Rate()
		obsRate := observed.Frequency(k.segment, k.position).Rate()
		score := 1 - math.Abs(refRate-obsRate)
		sum += score
		contributions = append(contributions, FieldContribution{
			Field: fmt.Sprintf("%s.%d", k.segment, k.position),
			Score: score,
		})
	}

	sort.Slice(contributions, func(i, j int) bool {
		if contributions[i].Score != contributions[j].Score {
			return contributions[i].Score > contributions[j].Score
		}
		return contributions[i].Field < contributions[j].Field
	})
	return sum / float64(len(union)), contributions
}
