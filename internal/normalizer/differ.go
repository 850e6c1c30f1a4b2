package normalizer

import (
	"strings"
	"unicode/utf8"
)

// DefaultThreshold is the similarity above which two bodies are considered
// the same text.
const DefaultThreshold = 95.0

// minTokenRunes drops particles and articles ("de", "la", "y") from the
// token sets.
const minTokenRunes = 3

// Comparison is the result of comparing two texts.
type Comparison struct {
	Match      bool
	Similarity float64
}

// Differ compares article bodies with a configurable match threshold.
type Differ struct {
	threshold float64
}

// NewDiffer returns a Differ. A non-positive threshold selects
// DefaultThreshold.
func NewDiffer(threshold float64) *Differ {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	return &Differ{threshold: threshold}
}

// Threshold returns the configured match threshold.
func (d *Differ) Threshold() float64 {
	return d.threshold
}

// Compare normalizes both texts and scores their token overlap from 0 to
// 100. Identical normalized texts score 100; an empty side scores 0.
func (d *Differ) Compare(a, b string) Comparison {
	na, nb := NormalizeText(a), NormalizeText(b)
	if na == "" || nb == "" {
		return Comparison{}
	}

	if na == nb {
		return Comparison{Match: true, Similarity: 100}
	}

	ta, tb := tokenSet(na), tokenSet(nb)

	denominator := max(len(ta), len(tb))
	if denominator == 0 {
		return Comparison{}
	}

	shared := 0

	for tok := range ta {
		if _, ok := tb[tok]; ok {
			shared++
		}
	}

	similarity := float64(shared*100) / float64(denominator)

	return Comparison{Match: similarity > d.threshold, Similarity: similarity}
}

// CompareContent compares with DefaultThreshold.
func CompareContent(a, b string) Comparison {
	return NewDiffer(DefaultThreshold).Compare(a, b)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})

	for _, tok := range strings.Fields(s) {
		if utf8.RuneCountInString(tok) >= minTokenRunes {
			set[tok] = struct{}{}
		}
	}

	return set
}
