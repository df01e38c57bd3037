package quickentry

import (
	"slices"
	"strings"
	"unicode"
)

// MatchStatus tells how a ticket line resolved against the menu.
type MatchStatus int

const (
	Matched MatchStatus = iota
	Ambiguous
	Unmatched
)

func (s MatchStatus) String() string {
	switch s {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	case Unmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

func (s MatchStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Item is a menu entry the matcher can resolve to.
type Item struct {
	ID       string
	Name     string
	Category string
}

// MatchResult is the outcome for one ticket line.
type MatchResult struct {
	Status     MatchStatus
	Item       *Item  // when Matched
	Candidates []Item // when Ambiguous
}

// Matcher resolves typed item names against the menu by keyword overlap.
type Matcher struct {
	items          []Item
	names          []string // normalized full names
	itemKeywordMap [][]string
}

const (
	variantWeight = 5
	regularWeight = 1
)

// Variant words separate otherwise similar items ("iced tea" vs "hot tea").
// When the input names one, a candidate must carry it too.
var variantKeywords = map[string]bool{
	"iced": true, "hot": true,
	"large": true, "small": true, "regular": true,
	"spicy": true, "mild": true,
	"vegan": true, "vegetarian": true,
	"decaf": true, "diet": true,
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "of": true, "with": true,
}

// New builds a Matcher over items, tokenizing their names once.
func New(items []Item) *Matcher {
	m := &Matcher{
		items:          items,
		names:          make([]string, len(items)),
		itemKeywordMap: make([][]string, len(items)),
	}
	for i, item := range items {
		m.names[i] = normalize(item.Name)
		m.itemKeywordMap[i] = keywords(m.names[i])
	}
	return m
}

// Match scores every item against text. A normalized exact name match wins
// outright; otherwise the single highest score wins and ties are ambiguous.
func (m *Matcher) Match(text string) MatchResult {
	normalized := normalize(text)
	for i, name := range m.names {
		if name != "" && name == normalized {
			return MatchResult{Status: Matched, Item: &m.items[i]}
		}
	}

	in := newQuery(keywords(normalized))

	best := 0
	var top []Item
	for i, item := range m.items {
		s := in.score(m.itemKeywordMap[i])
		switch {
		case s == 0 || s < best:
		case s > best:
			best = s
			top = []Item{item}
		default:
			top = append(top, item)
		}
	}

	switch len(top) {
	case 0:
		return MatchResult{Status: Unmatched}
	case 1:
		return MatchResult{Status: Matched, Item: &top[0]}
	default:
		return MatchResult{Status: Ambiguous, Candidates: top}
	}
}

// query is a tokenized line of ticket text.
type query struct {
	words    map[string]bool
	variants map[string]bool
}

func newQuery(tokens []string) query {
	q := query{words: make(map[string]bool), variants: make(map[string]bool)}
	for _, tok := range tokens {
		q.words[tok] = true
		if variantKeywords[tok] {
			q.variants[tok] = true
		}
	}
	return q
}

// score weighs the overlap between the query and one item's keywords.
// Zero means the item is not a candidate: it lacks a requested variant, or
// only a variant word matched.
func (q query) score(itemKeywords []string) int {
	if !containsAll(itemKeywords, q.variants) {
		return 0
	}
	score, plain := 0, 0
	for _, kw := range itemKeywords {
		if !q.words[kw] {
			continue
		}
		if variantKeywords[kw] {
			score += variantWeight
		} else {
			score += regularWeight
			plain++
		}
	}
	if plain == 0 && len(q.words) > len(q.variants) {
		return 0
	}
	return score
}

func containsAll(keywords []string, want map[string]bool) bool {
	for w := range want {
		if !slices.Contains(keywords, w) {
			return false
		}
	}
	return true
}

// normalize lowercases s and collapses every run of non-alphanumerics to one space.
func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}

// keywords tokenizes a normalized string, dropping stop words and folding
// simple plurals so "wings" matches "wing".
func keywords(normalized string) []string {
	fields := strings.Fields(normalized)
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if stopWords[tok] {
			continue
		}
		out = append(out, singular(tok))
	}
	return out
}

func singular(tok string) string {
	if len(tok) > 3 && strings.HasSuffix(tok, "s") && !strings.HasSuffix(tok, "ss") {
		return tok[:len(tok)-1]
	}
	return tok
}
