package heuristic

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Matcher scans text for one category of information.
type Matcher interface {
	// Find returns the findings in order of appearance, or nil when nothing matched.
	Find(text string) []string
}

// PatternMatcher collects every non-overlapping match of a compiled pattern.
//
// A pattern with capture groups reports, for each match, the first group that
// took part in it. Such patterns guard their findings with single characters
// on either side; the text is padded with a space at both ends so the guards
// also hold at the edges, and scanning resumes right after each finding so a
// trailing guard can serve as the next leading one.
type PatternMatcher struct {
	Regex *regexp.Regexp
}

func (m PatternMatcher) Find(text string) []string {
	if m.Regex.NumSubexp() == 0 {
		return m.Regex.FindAllString(text, -1)
	}

	padded := " " + text + " "
	var found []string
	for pos := 0; pos < len(padded); {
		loc := m.Regex.FindStringSubmatchIndex(padded[pos:])
		if loc == nil {
			break
		}
		start, end := loc[0], loc[1]
		for g := 2; g+1 < len(loc); g += 2 {
			if loc[g] >= 0 {
				start, end = loc[g], loc[g+1]
				break
			}
		}
		if end > start {
			found = append(found, padded[pos+start:pos+end])
			pos += end
			continue
		}
		_, size := utf8.DecodeRuneInString(padded[pos+loc[0]:])
		pos += loc[0] + max(size, 1)
	}
	return found
}

// KeywordMatcher is an existence check over a keyword set. Matching is
// case-insensitive and stops at the first keyword found.
type KeywordMatcher struct {
	Keywords []string
}

func (m KeywordMatcher) Find(text string) []string {
	lower := strings.ToLower(text)
	for _, kw := range m.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return []string{kw}
		}
	}
	return nil
}

// Rule is one detector: a matcher plus the text it contributes when it fires.
type Rule struct {
	Name       string
	Matcher    Matcher
	Relevance  string // relevance point, or its prefix when ListMatches is set
	ActionItem string

	// ListMatches appends the comma-joined findings to Relevance.
	ListMatches bool
}

// relevanceFor renders the relevance point for a set of findings.
func (r Rule) relevanceFor(found []string) string {
	if !r.ListMatches {
		return r.Relevance
	}
	return r.Relevance + strings.Join(found, ", ")
}

// Rule names, in evaluation order.
const (
	RuleDates       = "dates"
	RuleMoney       = "money"
	RuleEligibility = "eligibility"
	RuleContacts    = "contacts"
	RuleProcurement = "procurement"
)

// DefaultCurrencySymbols are the prefixes the money rule recognises.
var DefaultCurrencySymbols = []string{"₹"}

// RE2 classes are ASCII-only, so Unicode word boundaries are spelled out as
// guard characters around a captured finding.
const (
	space   = `[\s\v\x{85}\p{Z}]`
	digit   = `\p{Nd}`
	nonWord = `[^\p{L}\p{M}\p{Nd}\p{Pc}]`
)

// bounded captures core when it stands between non-word characters.
func bounded(core string) string {
	return nonWord + `(` + core + `)` + nonWord
}

var (
	datePattern = regexp.MustCompile(strings.Join([]string{
		bounded(digit + `{1,2}[/-]` + digit + `{1,2}[/-]` + digit + `{2,4}`),
		bounded(digit + `{4}[/-]` + digit + `{1,2}[/-]` + digit + `{1,2}`),
		bounded(`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*` + space + `+` + digit + `{1,2},?` + space + `+` + digit + `{4}`),
	}, "|"))

	// A +91 prefix must not follow a word character or another '+'.
	contactPattern = regexp.MustCompile(strings.Join([]string{
		bounded(`[A-Za-z0-9_][A-Za-z0-9._%+-]*@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}`),
		`[^\p{L}\p{M}\p{Nd}\p{Pc}+](\+91[6-9]` + digit + `{9})` + nonWord,
		bounded(`0?[6-9]` + digit + `{9}`),
	}, "|"))

	eligibilityKeywords = []string{"eligibility", "qualification", "criteria", "requirement", "minimum"}
	procurementKeywords = []string{"tender", "procurement", "bid", "quotation", "rfp", "rfq"}
)

var unitAmount = bounded(digit + `{1,3}(?:,` + digit + `{3})*(?:\.` + digit + `{2})?` + space + `*(?i:lakh|crore|thousand|million|billion)`)

// moneyPattern builds the money rule pattern for the given currency symbols.
// With no symbols only unit-word amounts ("5 crore") are recognised.
func moneyPattern(symbols []string) *regexp.Regexp {
	var quoted []string
	for _, s := range symbols {
		s = strings.TrimSpace(s)
		if s != "" {
			quoted = append(quoted, regexp.QuoteMeta(s))
		}
	}
	if len(quoted) == 0 {
		return regexp.MustCompile(unitAmount)
	}
	symbol := `((?:` + strings.Join(quoted, "|") + `)` + space + `*[` + digit + `,]+(?:\.` + digit + `{2})?)`
	return regexp.MustCompile(symbol + `|` + unitAmount)
}

// DefaultRules returns the five procurement detectors in evaluation order.
func DefaultRules(currencySymbols []string) []Rule {
	return []Rule{
		{
			Name:        RuleDates,
			Matcher:     PatternMatcher{Regex: datePattern},
			Relevance:   "Deadlines found: ",
			ActionItem:  "Review submission deadlines and plan accordingly",
			ListMatches: true,
		},
		{
			Name:        RuleMoney,
			Matcher:     PatternMatcher{Regex: moneyPattern(currencySymbols)},
			Relevance:   "Financial values: ",
			ActionItem:  "Verify budget allocation and financial requirements",
			ListMatches: true,
		},
		{
			Name:       RuleEligibility,
			Matcher:    KeywordMatcher{Keywords: eligibilityKeywords},
			Relevance:  "Eligibility criteria mentioned in document",
			ActionItem: "Review eligibility requirements and ensure compliance",
		},
		{
			Name:        RuleContacts,
			Matcher:     PatternMatcher{Regex: contactPattern},
			Relevance:   "Contact information: ",
			ActionItem:  "Save contact details for inquiries",
			ListMatches: true,
		},
		{
			Name:       RuleProcurement,
			Matcher:    KeywordMatcher{Keywords: procurementKeywords},
			Relevance:  "Procurement/tender document identified",
			ActionItem: "Review procurement process and requirements",
		},
	}
}
