package sentiment

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/sentiwatch/watchdog/internal/domain"
	apperrors "github.com/sentiwatch/watchdog/internal/errors"
	"github.com/sentiwatch/watchdog/internal/metrics"
)

const (
	// normalizationAlpha flattens the summed valence onto [-1, 1],
	// same curve for both methods so their scores are comparable.
	normalizationAlpha = 15.0

	// exclaimBoost is the per-exclamation-mark amplification, capped
	// at maxExclaims marks.
	exclaimBoost = 0.292
	maxExclaims  = 3

	// contrastWeight is the extra weight the model method gives a
	// clause following a contrastive conjunction.
	contrastWeight = 1.5

	// emotionStep is the intensity added per emotion-word occurrence.
	emotionStep = 0.3

	maxKeywords = 10
)

// topicOrder fixes topic iteration order so results are reproducible.
var topicOrder = []string{"billing", "technical", "account", "product", "refund"}

// Config carries the scorer's resolved settings.
type Config struct {
	// ShortTextBelow selects the lexicon method for texts shorter
	// than this many runes, unless the text is flagged ambiguous.
	ShortTextBelow int
	// MaxContentLength is the hard input bound; longer content is an
	// analysis error.
	MaxContentLength int
}

// Scorer implements domain.Scorer. Stateless apart from configuration,
// so results are reproducible for identical input and config.
type Scorer struct {
	cfg   Config
	clock clockwork.Clock
}

func NewScorer(cfg Config, clock clockwork.Clock) *Scorer {
	return &Scorer{cfg: cfg, clock: clock}
}

// Score computes the sentiment result for a ticket. It fails only on
// empty or over-long content; anything else yields a result, with low
// confidence when the vocabulary gives no signal.
func (s *Scorer) Score(_ context.Context, ticket domain.Ticket) (domain.SentimentResult, error) {
	content := strings.TrimSpace(ticket.Content)
	if content == "" {
		return domain.SentimentResult{}, apperrors.AnalysisError("ticket content is empty", domain.ErrEmptyContent).
			WithContext("ticket_id", ticket.ID.String())
	}
	if n := utf8.RuneCountInString(content); n > s.cfg.MaxContentLength {
		return domain.SentimentResult{}, apperrors.AnalysisError("ticket content exceeds maximum length", domain.ErrContentTooLong).
			WithContext("ticket_id", ticket.ID.String()).
			WithContext("length", n)
	}

	tokens := tokenize(content)
	exclaims := strings.Count(content, "!")

	lex := scoreTokens(tokens, exclaims)

	method := s.selectMethod(content, tokens)

	result := domain.SentimentResult{
		TicketID:   ticket.ID,
		Method:     method,
		Positive:   lex.positive,
		Negative:   lex.negative,
		Neutral:    lex.neutral,
		Emotions:   detectEmotions(tokens),
		Topics:     detectTopics(tokens),
		Keywords:   extractKeywords(tokens),
		ComputedAt: s.clock.Now(),
	}

	switch method {
	case domain.MethodModel:
		modelScore := scoreClauses(content)
		result.Score = modelScore
		// Confidence from inter-method agreement: the closer the two
		// methods land, the more certain the verdict.
		agreement := 1.0 - math.Abs(modelScore-lex.score)/2.0
		result.Confidence = clamp01((agreement + lex.neutral) / 2.0)
	default:
		result.Score = lex.score
		result.Confidence = lex.intrinsicConfidence()
	}

	metrics.SentimentScoredTotal.WithLabelValues(string(method)).Inc()
	metrics.SentimentScore.Observe(result.Score)

	return result, nil
}

// selectMethod is deterministic given text length and the ambiguity
// signal: short unambiguous texts take the lexicon path, everything
// else the model path.
func (s *Scorer) selectMethod(content string, tokens []string) domain.Method {
	if utf8.RuneCountInString(content) >= s.cfg.ShortTextBelow {
		return domain.MethodModel
	}
	if isAmbiguous(tokens) {
		return domain.MethodModel
	}
	return domain.MethodLexicon
}

// isAmbiguous flags texts with a contrastive conjunction or with both
// positive and negative lexical cues present.
func isAmbiguous(tokens []string) bool {
	var hasPos, hasNeg bool
	for _, tok := range tokens {
		if contrastives[tok] {
			return true
		}
		if v, ok := valences[tok]; ok {
			if v > 0 {
				hasPos = true
			} else {
				hasNeg = true
			}
		}
	}
	return hasPos && hasNeg
}

type lexiconOutcome struct {
	score    float64
	positive float64
	negative float64
	neutral  float64
	coverage float64
	hits     int
}

// intrinsicConfidence is the single-method certainty measure: lexicon
// coverage of the text. No hits at all means a low-confidence neutral
// verdict rather than a failure.
func (o lexiconOutcome) intrinsicConfidence() float64 {
	if o.hits == 0 {
		return 0.3
	}
	return math.Min(0.4+0.5*o.coverage, 0.9)
}

// scoreTokens runs the lexicon method over a token stream: valence
// lookup with booster and negation handling in a three-token window,
// exclamation amplification, then normalization onto [-1, 1].
func scoreTokens(tokens []string, exclaims int) lexiconOutcome {
	var sum, posMass, negMass float64
	hits := 0

	for i, tok := range tokens {
		v, ok := valences[tok]
		if !ok {
			continue
		}
		hits++

		var boost float64
		negated := false
		for j := i - 1; j >= 0 && j >= i-3; j-- {
			if b, ok := boosters[tokens[j]]; ok {
				boost += b
			}
			if negators[tokens[j]] {
				negated = !negated
			}
		}

		if v > 0 {
			v += boost
		} else {
			v -= boost
		}
		if negated {
			v *= -0.74
		}

		if v > 0 {
			posMass += v
		} else {
			negMass += -v
		}
		sum += v
	}

	if exclaims > 0 {
		amp := float64(min(exclaims, maxExclaims)) * exclaimBoost
		switch {
		case sum > 0:
			sum += amp
		case sum < 0:
			sum -= amp
		}
	}

	out := lexiconOutcome{
		score: normalize(sum),
		hits:  hits,
	}
	if len(tokens) > 0 {
		out.coverage = float64(hits) / float64(len(tokens))
	}

	neuCount := float64(len(tokens) - hits)
	total := posMass + negMass + neuCount
	if total > 0 {
		out.positive = posMass / total
		out.negative = negMass / total
		out.neutral = neuCount / total
	} else {
		out.neutral = 1
	}

	return out
}

// scoreClauses is the model method: sentences are split at contrastive
// conjunctions and the clause after the pivot is weighted higher, so
// "the app is nice but billing is broken" leans negative.
func scoreClauses(content string) float64 {
	sentences := strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == ';' || r == '\n'
	})

	var weightedSum, totalWeight float64

	for _, sentence := range sentences {
		tokens := tokenize(sentence)
		if len(tokens) == 0 {
			continue
		}

		weight := 1.0
		clauseStart := 0
		flush := func(end int) {
			clause := tokens[clauseStart:end]
			if len(clause) == 0 {
				return
			}
			out := scoreTokens(clause, 0)
			w := weight * float64(len(clause))
			weightedSum += out.score * w
			totalWeight += w
		}

		for i, tok := range tokens {
			if contrastives[tok] {
				flush(i)
				clauseStart = i + 1
				weight *= contrastWeight
			}
		}
		flush(len(tokens))
	}

	if totalWeight == 0 {
		return 0
	}
	return clampScore(weightedSum / totalWeight)
}

func detectEmotions(tokens []string) domain.EmotionScores {
	return domain.EmotionScores{
		Anger:       emotionScore(tokens, emotionWords["anger"]),
		Confusion:   emotionScore(tokens, emotionWords["confusion"]),
		Delight:     emotionScore(tokens, emotionWords["delight"]),
		Frustration: emotionScore(tokens, emotionWords["frustration"]),
	}
}

func emotionScore(tokens []string, words []string) float64 {
	var score float64
	for _, w := range words {
		for _, tok := range tokens {
			if tok == w {
				score += emotionStep
			}
		}
	}
	return math.Min(score, 1.0)
}

func detectTopics(tokens []string) []string {
	present := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		present[tok] = true
	}

	var topics []string
	for _, topic := range topicOrder {
		for _, w := range topicWords[topic] {
			if present[w] {
				topics = append(topics, topic)
				break
			}
		}
	}
	return topics
}

// extractKeywords returns up to maxKeywords content words ranked by
// frequency, ties broken alphabetically for reproducibility.
func extractKeywords(tokens []string) []string {
	freq := make(map[string]int)
	for _, tok := range tokens {
		if stopWords[tok] || len(tok) <= 2 {
			continue
		}
		freq[tok]++
	}

	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > maxKeywords {
		words = words[:maxKeywords]
	}
	return words
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

func normalize(sum float64) float64 {
	if sum == 0 {
		return 0
	}
	return clampScore(sum / math.Sqrt(sum*sum+normalizationAlpha))
}

func clampScore(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
