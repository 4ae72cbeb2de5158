package rubricas

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"contracheques/internal/core"
)

// MatchResult records the matching decision for one distinct
// description value. Every row sharing the description inherits it.
type MatchResult struct {
	Description string
	Accepted    bool
	Score       int
}

// Matcher scores descriptions against a vocabulary using a normalized
// edit-distance ratio (0-100, 100 = identical). Scoring happens on
// diacritic-folded, case-folded, space-collapsed forms so that
// extraction artifacts do not mask real matches.
type Matcher struct {
	vocab  Vocabulary
	folded []string
}

var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

func NewMatcher(vocab Vocabulary) *Matcher {
	m := &Matcher{vocab: vocab, folded: make([]string, len(vocab))}
	for i, entry := range vocab {
		m.folded[i] = fold(entry)
	}
	return m
}

// fold strips diacritics, lowercases and collapses runs of whitespace.
func fold(s string) string {
	if out, _, err := transform.String(foldTransformer, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ratio is the normalized Levenshtein similarity of two folded strings.
func ratio(a, b string) int {
	if a == b {
		return 100
	}
	la, lb := len([]rune(a)), len([]rune(b))
	max := la
	if lb > max {
		max = lb
	}
	if max == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return int(math.Round(100 * (1 - float64(d)/float64(max))))
}

// BestScore returns the highest similarity of desc against the whole
// vocabulary, or 0 when the vocabulary is empty.
func (m *Matcher) BestScore(desc string) int {
	f := fold(desc)
	best := 0
	for _, entry := range m.folded {
		if s := ratio(f, entry); s > best {
			best = s
			if best == 100 {
				break
			}
		}
	}
	return best
}

// Results scores every distinct description in items against the
// vocabulary and accepts those reaching the threshold. The scoring per
// description is stateless, so it fans out across goroutines; results
// come back sorted by description for deterministic output.
func (m *Matcher) Results(items []core.LineItem, threshold int) []MatchResult {
	if len(items) == 0 || len(m.vocab) == 0 {
		return nil
	}

	distinct := distinctDescriptions(items)
	results := make([]MatchResult, len(distinct))

	var g errgroup.Group
	for i, desc := range distinct {
		g.Go(func() error {
			score := m.BestScore(desc)
			results[i] = MatchResult{
				Description: desc,
				Accepted:    score >= threshold,
				Score:       score,
			}
			return nil
		})
	}
	// Workers never return errors; Wait is just the join point.
	_ = g.Wait()

	return results
}

// Filter keeps the items whose description was accepted at the given
// threshold. Acceptance is coarse-grained: all rows sharing an accepted
// description pass, all rows sharing a rejected one are dropped. Empty
// input or an empty vocabulary yield an empty result, never an error.
func (m *Matcher) Filter(items []core.LineItem, threshold int) []core.LineItem {
	accepted := make(map[string]bool)
	for _, r := range m.Results(items, threshold) {
		if r.Accepted {
			accepted[r.Description] = true
		}
	}

	var out []core.LineItem
	for _, it := range items {
		if accepted[it.Description] {
			out = append(out, it)
		}
	}
	return out
}

func distinctDescriptions(items []core.LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		if _, ok := seen[it.Description]; ok {
			continue
		}
		seen[it.Description] = struct{}{}
		out = append(out, it.Description)
	}
	sort.Strings(out)
	return out
}
