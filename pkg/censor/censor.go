// Package censor provides lexical content filtering and masking.

// Important notice: Test data files contain examples of explicit language
// and offensive terms required for pattern validation. These examples:
// - Are intentionally provocative to test edge cases
// - Do not represent the author's views
// - Should be treated as technical test artifacts only

// If you find such content disturbing or prefer to avoid exposure
// to sensitive language patterns:
// 1. Do not inspect the 'test_data' directory
// 2. Avoid reviewing test case literals
package censor

import (
	"strings"
	"sync/atomic"

	"wordmask/pkg/trie"
)

// DefaultPlaceholder replaces every character of a matched span.
const DefaultPlaceholder = '*'

// NoiseSet holds characters that are skipped inside a match without breaking it.
type NoiseSet map[rune]struct{}

// DefaultNoise returns the separators commonly used to split a banned phrase apart.
func DefaultNoise() NoiseSet {
	return NewNoiseSet(' ', '!', '*', '-', '+', '_', '=', ',', '，', '.', '@', ';', ':', '；', '：')
}

// NewNoiseSet returns a set containing runes.
func NewNoiseSet(runes ...rune) NoiseSet {
	set := make(NoiseSet, len(runes))
	for _, r := range runes {
		set[r] = struct{}{}
	}
	return set
}

// Match is an inclusive span of rune indices covered by a banned phrase.
type Match struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Censor detects and masks banned phrases. The active dictionary is swapped
// atomically, so scans in flight finish against the dictionary they started with.
//
// The zero value has an empty dictionary, no noise characters and the default
// placeholder; use New for the usual configuration.
type Censor struct {
	dict        atomic.Pointer[trie.Trie]
	placeholder rune
	noise       NoiseSet
}

// Option configures a Censor.
type Option func(*Censor)

// WithPlaceholder sets the character written over matched spans.
func WithPlaceholder(r rune) Option {
	return func(c *Censor) {
		c.placeholder = r
	}
}

// WithNoise replaces the default noise set.
func WithNoise(set NoiseSet) Option {
	return func(c *Censor) {
		c.noise = set
	}
}

// New returns a Censor with an empty dictionary.
func New(opts ...Option) *Censor {
	c := &Censor{
		placeholder: DefaultPlaceholder,
		noise:       DefaultNoise(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Masked output must stop a match, otherwise masking twice could find new spans.
	noise := make(NoiseSet, len(c.noise))
	for r := range c.noise {
		if r != c.Placeholder() {
			noise[r] = struct{}{}
		}
	}
	c.noise = noise

	return c
}

// Placeholder returns the character written over matched spans.
func (c *Censor) Placeholder() rune {
	if c.placeholder == 0 {
		return DefaultPlaceholder
	}
	return c.placeholder
}

// Load replaces the active dictionary with phrases. Noise characters and the
// placeholder are removed from every phrase; phrases left empty are ignored.
func (c *Censor) Load(phrases []string) {
	cleaned := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = c.clean(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}

	c.Swap(trie.Load(cleaned))
}

// Swap publishes t as the active dictionary. Unlike Load it does not clean the
// phrases; a phrase containing the placeholder can never match.
func (c *Censor) Swap(t *trie.Trie) {
	c.dict.Store(t)
}

// Dictionary returns the active dictionary. It may be nil before the first Load.
func (c *Censor) Dictionary() *trie.Trie {
	return c.dict.Load()
}

// Mask returns text with every banned phrase replaced by the placeholder, one
// placeholder per character. Noise characters inside a match are replaced as well.
func (c *Censor) Mask(text string) string {
	t := c.Dictionary()
	if t.Empty() || isBlank(text) {
		return text
	}

	runes := []rune(text)
	changed := false
	c.scan(t, runes, func(start, end int) bool {
		for k := start; k <= end; k++ {
			runes[k] = c.Placeholder()
		}
		changed = true
		return true
	})

	if !changed {
		return text
	}
	return string(runes)
}

// Contains reports whether text holds a banned phrase, that is whether Mask
// would change it.
func (c *Censor) Contains(text string) bool {
	if isBlank(text) {
		return false
	}
	t := c.Dictionary()
	if t.Empty() {
		return false
	}

	found := false
	c.scan(t, []rune(text), func(_, _ int) bool {
		found = true
		return false
	})

	return found
}

// Matches returns the spans Mask would replace, in text order.
func (c *Censor) Matches(text string) []Match {
	t := c.Dictionary()
	if t.Empty() || isBlank(text) {
		return nil
	}

	runes := []rune(text)
	var matches []Match
	c.scan(t, runes, func(start, end int) bool {
		matches = append(matches, Match{
			Start: start,
			End:   end,
			Text:  string(runes[start : end+1]),
		})
		return true
	})

	return matches
}

// Redact masks text and returns the replaced spans, both from a single scan of
// one dictionary snapshot.
func (c *Censor) Redact(text string) (string, []Match) {
	t := c.Dictionary()
	if t.Empty() || isBlank(text) {
		return text, nil
	}

	runes := []rune(text)
	var matches []Match
	c.scan(t, runes, func(start, end int) bool {
		matches = append(matches, Match{
			Start: start,
			End:   end,
			Text:  string(runes[start : end+1]),
		})
		for k := start; k <= end; k++ {
			runes[k] = c.Placeholder()
		}
		return true
	})

	if len(matches) == 0 {
		return text, nil
	}
	return string(runes), matches
}

// scan walks runes and calls fn with every matched span. fn returns false to stop.
//
// Each attempt starts at a candidate start character and descends the trie as long
// as a continuation exists, remembering the last position where a phrase ended.
// After a match scanning resumes right after it; after a failed attempt it resumes
// at the next character, so starts skipped by a long failed attempt are retried.
// A placeholder ends every walk, whatever the dictionary holds, so masked text
// is never matched again.
func (c *Censor) scan(t *trie.Trie, runes []rune, fn func(start, end int) bool) {
	ph := c.Placeholder()
	i := c.nextStart(t, runes, 0)
	for i < len(runes) {
		start, end := i, i
		matched := false

		level := t.RootChildren()
		for j := i; j < len(runes); j++ {
			if runes[j] == ph {
				break
			}
			if c.isNoise(runes[j]) {
				continue
			}
			node, ok := level[runes[j]]
			if !ok {
				break
			}
			level = node.Children()

			leaf := !node.HasChildren()
			if node.Terminal() || leaf {
				end, matched = j, true
				if leaf {
					break
				}
			}
		}

		if matched && !fn(start, end) {
			return
		}
		i = c.nextStart(t, runes, end+1)
	}
}

// nextStart returns the index of the first candidate start at or after from,
// or len(runes) if there is none. The placeholder never starts a match.
func (c *Censor) nextStart(t *trie.Trie, runes []rune, from int) int {
	ph := c.Placeholder()
	for i := from; i < len(runes); i++ {
		if runes[i] != ph && t.IsStart(runes[i]) {
			return i
		}
	}
	return len(runes)
}

func (c *Censor) isNoise(r rune) bool {
	_, ok := c.noise[r]
	return ok
}

func (c *Censor) clean(phrase string) string {
	return strings.Map(func(r rune) rune {
		if r == c.Placeholder() || c.isNoise(r) {
			return -1
		}
		return r
	}, phrase)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
