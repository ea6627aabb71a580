package fallback

import "github.com/glance/spectra6"

// Rule assigns Index to colors whose channels all lie in their inclusive
// ranges.
type Rule struct {
	Index      uint8
	RMin, RMax uint8
	GMin, GMax uint8
	BMin, BMax uint8
}

// Matches reports whether c falls inside the rule's box.
func (r Rule) Matches(c spectra6.RGB) bool {
	return c.R >= r.RMin && c.R <= r.RMax &&
		c.G >= r.GMin && c.G <= r.GMax &&
		c.B >= r.BMin && c.B <= r.BMax
}

// RuleSet is an ordered list of boxes with a brightness threshold for
// colors no box claims: a mean channel value above Threshold maps to
// Light, anything else to Dark.
type RuleSet struct {
	Rules     []Rule
	Threshold int
	Light     uint8
	Dark      uint8
}

// FirmwareRules is the classifier shipped in the panel firmware. The first
// matching rule wins.
var FirmwareRules = RuleSet{
	Rules: []Rule{
		{Index: spectra6.Black, RMin: 0, RMax: 31, GMin: 0, GMax: 31, BMin: 0, BMax: 31},
		{Index: spectra6.White, RMin: 225, RMax: 255, GMin: 225, GMax: 255, BMin: 225, BMax: 255},
		{Index: spectra6.Yellow, RMin: 201, RMax: 255, GMin: 201, GMax: 255, BMin: 0, BMax: 99},
		{Index: spectra6.Red, RMin: 201, RMax: 255, GMin: 0, GMax: 99, BMin: 0, BMax: 99},
		{Index: spectra6.Blue, RMin: 0, RMax: 99, GMin: 0, GMax: 99, BMin: 201, BMax: 255},
		{Index: spectra6.Green, RMin: 0, RMax: 99, GMin: 201, GMax: 255, BMin: 0, BMax: 99},
	},
	Threshold: 127,
	Light:     spectra6.White,
	Dark:      spectra6.Black,
}

// Classify returns the code of the first rule matching c, or the
// brightness fallback.
func (rs RuleSet) Classify(c spectra6.RGB) uint8 {
	for _, r := range rs.Rules {
		if r.Matches(c) {
			return r.Index
		}
	}
	// Integer mean, as the firmware computes it
	if (int(c.R)+int(c.G)+int(c.B))/3 > rs.Threshold {
		return rs.Light
	}
	return rs.Dark
}

// Match implements Classifier.
func (rs RuleSet) Match(c spectra6.RGB) uint8 {
	return rs.Classify(c)
}
