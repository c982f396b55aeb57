// Package intent maps free-form utterances onto the closed intent vocabulary.
package intent

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/doeshing/gitflow-ai/internal/domain"
	"github.com/doeshing/gitflow-ai/internal/ports"
)

const (
	patternPenalty     = 0.05
	fuzzyPenalty       = 0.25
	missingPenalty     = 0.2
	minConfidence      = 0.05
	catchallConfidence = 0.55
	maxLengthSkew      = 1
	fallbackAdvance    = 0.05
)

var (
	punctuationRE = regexp.MustCompile(`[^a-z0-9/._\-\s]+`)
	trailingDotRE = regexp.MustCompile(`\.+(\s|$)`)
	spacesRE      = regexp.MustCompile(`\s+`)
	tagRE         = regexp.MustCompile(`[a-z][a-z_\-]+[a-z]`)
	paramLineRE   = regexp.MustCompile(`(?i)^\s*(branch|target|message|remote|force)\s*[:=]\s*(.+?)\s*$`)
)

// Recognizer implements ports.IntentRecognizer with an ordered rule table,
// typo-tolerant keyword matching and an optional model fallback.
type Recognizer struct {
	rules           []Rule
	threshold       float64
	minFuzzyLen     int
	fallback        ports.FallbackSummarizer
	fallbackTimeout time.Duration
	logger          ports.Logger
}

// NewRecognizer wires the rule table to the recognizer settings. fallback may
// be nil, which disables the fallback stage.
func NewRecognizer(cfg domain.Config, fallback ports.FallbackSummarizer, logger ports.Logger) *Recognizer {
	return &Recognizer{
		rules:           Rules(),
		threshold:       cfg.GetConfidenceThreshold(),
		minFuzzyLen:     cfg.GetFuzzyMinTokenLength(),
		fallback:        fallback,
		fallbackTimeout: cfg.GetFallbackTimeout(),
		logger:          logger,
	}
}

type scored struct {
	intent domain.Intent
	order  int
}

// Recognize implements ports.IntentRecognizer. The result is never empty and
// is sorted by confidence, highest first.
func (r *Recognizer) Recognize(ctx context.Context, utterance string, state domain.RepositoryState) []domain.Intent {
	normalized := normalize(utterance)
	if normalized == "" {
		return []domain.Intent{domain.UnknownIntent()}
	}

	best := map[domain.IntentKind]scored{}
	for i, rule := range r.rules {
		intent, ok := r.score(rule, normalized, utterance, state)
		if !ok {
			continue
		}
		keep(best, scored{intent: intent, order: i})
	}

	if r.fallback != nil && topConfidence(best) < r.threshold {
		if intent, ok := r.consultFallback(ctx, utterance, state); ok {
			_, order, _ := ruleFor(intent.Kind)
			keep(best, scored{intent: intent, order: order})
		}
	}

	if len(best) == 0 {
		return []domain.Intent{domain.UnknownIntent()}
	}

	ranked := make([]scored, 0, len(best))
	for _, s := range best {
		ranked = append(ranked, s)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].intent.Confidence != ranked[j].intent.Confidence {
			return ranked[i].intent.Confidence > ranked[j].intent.Confidence
		}
		return ranked[i].order < ranked[j].order
	})

	intents := make([]domain.Intent, len(ranked))
	for i, s := range ranked {
		intents[i] = s.intent
	}
	r.debug("intent recognized", map[string]interface{}{
		"utterance":  utterance,
		"top":        string(intents[0].Kind),
		"confidence": intents[0].Confidence,
		"candidates": len(intents),
	})
	return intents
}

func keep(best map[domain.IntentKind]scored, candidate scored) {
	if current, ok := best[candidate.intent.Kind]; ok && current.intent.Confidence >= candidate.intent.Confidence {
		return
	}
	best[candidate.intent.Kind] = candidate
}

func topConfidence(best map[domain.IntentKind]scored) float64 {
	top := 0.0
	for _, s := range best {
		if s.intent.Confidence > top {
			top = s.intent.Confidence
		}
	}
	return top
}

func (r *Recognizer) score(rule Rule, normalized, utterance string, state domain.RepositoryState) (domain.Intent, bool) {
	confidence, source := r.match(rule, normalized)
	if confidence == 0 {
		if !matchesPattern(normalized, rule.Catchall) {
			return domain.Intent{}, false
		}
		confidence, source = catchallConfidence, domain.SourceRule
	}

	intent := domain.Intent{Kind: rule.Kind, Source: source}
	if rule.Extract != nil {
		intent.Params = rule.Extract(utterance, state)
	}
	intent.Confidence = round(applyRequired(confidence, rule, intent))
	return intent, true
}

// match returns 0 when the rule is vetoed or nothing matched.
func (r *Recognizer) match(rule Rule, normalized string) (float64, domain.IntentSource) {
	for _, exclude := range rule.Excludes {
		if exclude.MatchString(normalized) {
			return 0, ""
		}
	}
	switch {
	case matchesPhrase(normalized, rule.Phrases):
		return rule.Confidence, domain.SourceRule
	case matchesPattern(normalized, rule.Patterns):
		return rule.Confidence - patternPenalty, domain.SourceRule
	case r.matchesKeywords(normalized, rule.Keywords):
		return rule.Confidence - fuzzyPenalty, domain.SourceFuzzy
	}
	return 0, ""
}

func applyRequired(confidence float64, rule Rule, intent domain.Intent) float64 {
	for _, name := range rule.Required {
		if !intent.HasParam(name) {
			confidence -= missingPenalty
		}
	}
	return math.Max(confidence, minConfidence)
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}

func matchesPhrase(normalized string, phrases []string) bool {
	padded := " " + normalized + " "
	for _, phrase := range phrases {
		if strings.Contains(padded, " "+phrase+" ") {
			return true
		}
	}
	return false
}

func matchesPattern(normalized string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(normalized) {
			return true
		}
	}
	return false
}

// matchesKeywords requires every keyword group to be met by some token.
func (r *Recognizer) matchesKeywords(normalized string, groups [][]string) bool {
	if len(groups) == 0 {
		return false
	}
	tokens := strings.Fields(normalized)
	for _, group := range groups {
		if !r.groupMatched(tokens, group) {
			return false
		}
	}
	return true
}

func (r *Recognizer) groupMatched(tokens []string, group []string) bool {
	for _, keyword := range group {
		for _, token := range tokens {
			if token == keyword || r.nearMatch(token, keyword) {
				return true
			}
		}
	}
	return false
}

// nearMatch accepts a single dropped, doubled or swapped letter. For a
// dropped or doubled letter one word must be a subsequence of the other and
// their lengths may differ by at most one.
func (r *Recognizer) nearMatch(token, keyword string) bool {
	if len(token) < r.minFuzzyLen {
		return false
	}
	skew := len(token) - len(keyword)
	if skew < -maxLengthSkew || skew > maxLengthSkew {
		return false
	}
	if skew == 0 && transposed(token, keyword) {
		return true
	}
	if skew <= 0 {
		return len(fuzzy.Find(token, []string{keyword})) > 0
	}
	return len(fuzzy.Find(keyword, []string{token})) > 0
}

// transposed reports whether a and b differ by one swap of adjacent letters.
func transposed(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	i := 0
	for i < len(a) && a[i] == b[i] {
		i++
	}
	if i+1 >= len(a) {
		return false
	}
	return a[i] == b[i+1] && a[i+1] == b[i] && a[i+2:] == b[i+2:]
}

func (r *Recognizer) consultFallback(ctx context.Context, utterance string, state domain.RepositoryState) (domain.Intent, bool) {
	cctx, cancel := context.WithTimeout(ctx, r.fallbackTimeout)
	defer cancel()

	text, err := r.fallback.Summarize(cctx, utterance, state.Digest())
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("intent fallback unavailable", map[string]interface{}{
				"error": domain.FallbackUnavailable(err).Error(),
			})
		}
		return domain.Intent{}, false
	}

	intent := parseFallback(text)
	if intent.Kind == domain.IntentUnknown {
		r.debug("fallback answered outside the vocabulary", map[string]interface{}{"answer": text})
		return domain.Intent{}, false
	}

	rule, _, _ := ruleFor(intent.Kind)
	if rule.Extract != nil {
		for name, value := range rule.Extract(utterance, state) {
			if !intent.HasParam(name) {
				if intent.Params == nil {
					intent.Params = map[string]string{}
				}
				intent.Params[name] = value
			}
		}
	}
	// A fallback answer lands just above the threshold so it outranks the
	// weak rule matches that triggered it.
	intent.Confidence = round(applyRequired(math.Min(r.threshold+fallbackAdvance, 1), rule, intent))
	return intent, true
}

// parseFallback takes the first vocabulary tag in the reply plus any
// "key: value" lines. Anything else coerces to unknown.
func parseFallback(text string) domain.Intent {
	intent := domain.Intent{Kind: domain.IntentUnknown, Source: domain.SourceFallback}
	for _, candidate := range tagRE.FindAllString(strings.ToLower(text), -1) {
		if kind, ok := domain.ParseIntentKind(candidate); ok {
			intent.Kind = kind
			break
		}
	}
	for _, line := range strings.Split(text, "\n") {
		match := paramLineRE.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		value := strings.Trim(match[2], "\"'`")
		if value == "" {
			continue
		}
		if intent.Params == nil {
			intent.Params = map[string]string{}
		}
		intent.Params[strings.ToLower(match[1])] = value
	}
	return intent
}

func normalize(utterance string) string {
	lowered := strings.ToLower(utterance)
	lowered = strings.NewReplacer("’", "", "'", "").Replace(lowered)
	lowered = punctuationRE.ReplaceAllString(lowered, " ")
	lowered = trailingDotRE.ReplaceAllString(lowered, " ")
	return strings.TrimSpace(spacesRE.ReplaceAllString(lowered, " "))
}

func (r *Recognizer) debug(msg string, fields map[string]interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, fields)
	}
}

var _ ports.IntentRecognizer = (*Recognizer)(nil)
