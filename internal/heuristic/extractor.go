// Package heuristic is the deterministic, rule-based tender summarizer.
//
// An Extractor runs an ordered table of independent rules over the input text.
// Every rule that fires contributes one relevance point and one action item;
// the confidence label depends only on how many rules fired.
package heuristic

import (
	"strings"

	"github.com/dgallion1/tenderbrief/internal/summary"
)

// summarySentences is how many period-delimited segments form the short summary.
const summarySentences = 3

type options struct {
	currencySymbols []string
	extraRules      []Rule
}

// Option configures an Extractor.
type Option func(*options)

// WithCurrencySymbols replaces the currency prefixes recognised by the money rule.
func WithCurrencySymbols(symbols ...string) Option {
	return func(o *options) {
		o.currencySymbols = symbols
	}
}

// WithExtraRules appends rules after the built-in detectors.
func WithExtraRules(rules ...Rule) Option {
	return func(o *options) {
		o.extraRules = append(o.extraRules, rules...)
	}
}

// Extractor is immutable after construction and safe for concurrent use.
type Extractor struct {
	rules []Rule
}

// New builds an Extractor with the default rule table.
func New(opts ...Option) *Extractor {
	o := options{currencySymbols: DefaultCurrencySymbols}
	for _, opt := range opts {
		opt(&o)
	}
	rules := DefaultRules(o.currencySymbols)
	rules = append(rules, o.extraRules...)
	return &Extractor{rules: rules}
}

// RuleNames lists the rule names in evaluation order.
func (e *Extractor) RuleNames() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Summarize never fails: input with no recognisable content yields empty
// lists, the fallback summary and low confidence.
func (e *Extractor) Summarize(text string) summary.Result {
	relevance := make([]string, 0, len(e.rules))
	actions := make([]string, 0, len(e.rules))

	for _, r := range e.rules {
		found := r.Matcher.Find(text)
		if len(found) == 0 {
			continue
		}
		relevance = append(relevance, r.relevanceFor(found))
		actions = append(actions, r.ActionItem)
	}

	return summary.Result{
		ShortSummary:         ShortSummary(text),
		RelevanceToOfficials: relevance,
		ActionItems:          actions,
		ConfidenceEstimate:   summary.ConfidenceFor(len(relevance)),
	}
}

// ShortSummary rejoins the first three period-delimited segments of text.
func ShortSummary(text string) string {
	segments := strings.SplitN(text, ".", summarySentences+1)
	if len(segments) > summarySentences {
		segments = segments[:summarySentences]
	}
	s := strings.TrimSpace(strings.Join(segments, ". "))
	if s == "" {
		return summary.FallbackSummary
	}
	return s
}

var defaultExtractor = New()

// Summarize runs the default rule table over text.
func Summarize(text string) summary.Result {
	return defaultExtractor.Summarize(text)
}
