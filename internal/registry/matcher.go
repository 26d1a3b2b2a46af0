// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package registry

import (
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
)

// Matcher resolves a district name as spelled by the open-data source to a
// registry entry.
type Matcher interface {
	Match(name string) (District, bool)
}

// ExactMatcher matches the English name case-insensitively after trimming.
type ExactMatcher struct {
	reg *Registry
}

// NewExactMatcher returns an ExactMatcher over reg.
func NewExactMatcher(reg *Registry) *ExactMatcher {
	return &ExactMatcher{reg: reg}
}

// Match implements Matcher.
func (m *ExactMatcher) Match(name string) (District, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return District{}, false
	}
	for _, d := range m.reg.districts {
		if strings.EqualFold(d.EnglishName(), name) {
			return cloneDistrict(d), true
		}
	}
	return District{}, false
}

// AliasMatcher resolves alternate spellings through a maintained table.
// Keys are compared after folding case and dropping everything but letters.
type AliasMatcher struct {
	reg     *Registry
	aliases map[string]string // folded alias -> code
}

// DefaultAliases lists spellings seen in the source for registry districts.
var DefaultAliases = map[string]string{
	"janjgir champa":       "janjgir-champa",
	"janjgir":              "janjgir-champa",
	"janjgir-champa (jcp)": "janjgir-champa",
	"raj nandgaon":         "rajnandgaon",
	"rajanandgaon":         "rajnandgaon",
	"bastar (jagdalpur)":   "bastar",
	"jagdalpur":            "bastar",
	"mahasamundh":          "mahasamund",
	"raigad":               "raigarh",
	"bilaspur (cg)":        "bilaspur",
}

// NewAliasMatcher builds a matcher from alias → district code. Aliases
// pointing at unknown codes are dropped.
func NewAliasMatcher(reg *Registry, aliases map[string]string) *AliasMatcher {
	m := &AliasMatcher{reg: reg, aliases: make(map[string]string, len(aliases))}
	for alias, code := range aliases {
		if _, ok := reg.byCode[code]; !ok {
			continue
		}
		m.aliases[foldName(alias)] = code
	}
	return m
}

// Match implements Matcher.
func (m *AliasMatcher) Match(name string) (District, bool) {
	code, ok := m.aliases[foldName(name)]
	if !ok {
		return District{}, false
	}
	return m.reg.Get(code)
}

// minFuzzyQuery is the shortest folded name the fuzzy matcher will consider.
const minFuzzyQuery = 4

// minFuzzyCoverage is the fraction of the candidate name the query must cover.
const minFuzzyCoverage = 0.8

// FuzzyMatcher tolerates dropped letters and punctuation differences
// ("Mahasamnd", "JANJGIR - CHAMPA"). A match must be unambiguous.
type FuzzyMatcher struct {
	reg    *Registry
	folded fuzzyNames
}

type fuzzyNames []string

func (f fuzzyNames) String(i int) string { return f[i] }
func (f fuzzyNames) Len() int            { return len(f) }

// NewFuzzyMatcher returns a FuzzyMatcher over reg's English names.
func NewFuzzyMatcher(reg *Registry) *FuzzyMatcher {
	folded := make(fuzzyNames, len(reg.districts))
	for i, d := range reg.districts {
		folded[i] = foldName(d.EnglishName())
	}
	return &FuzzyMatcher{reg: reg, folded: folded}
}

// Match implements Matcher.
func (m *FuzzyMatcher) Match(name string) (District, bool) {
	query := foldName(name)
	if len([]rune(query)) < minFuzzyQuery {
		return District{}, false
	}

	var candidates []fuzzy.Match
	for _, match := range fuzzy.FindFrom(query, m.folded) {
		target := len([]rune(match.Str))
		if float64(len([]rune(query))) >= minFuzzyCoverage*float64(target) {
			candidates = append(candidates, match)
		}
	}
	switch {
	case len(candidates) == 0:
		return District{}, false
	case len(candidates) > 1 && candidates[0].Score == candidates[1].Score:
		return District{}, false
	}
	return cloneDistrict(m.reg.districts[candidates[0].Index]), true
}

// ChainMatcher tries each matcher in order and returns the first hit.
type ChainMatcher []Matcher

// Match implements Matcher.
func (c ChainMatcher) Match(name string) (District, bool) {
	for _, m := range c {
		if d, ok := m.Match(name); ok {
			return d, true
		}
	}
	return District{}, false
}

// NewDefaultMatcher returns exact, then alias, then fuzzy matching.
func NewDefaultMatcher(reg *Registry) Matcher {
	return ChainMatcher{
		NewExactMatcher(reg),
		NewAliasMatcher(reg, DefaultAliases),
		NewFuzzyMatcher(reg),
	}
}

// foldName lowercases and keeps only letters.
func foldName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
