package sentiment

// Word valences on a [-4, 4] scale, normalized after summation. The
// vocabulary is tuned for customer-support language rather than
// general prose.
var valences = map[string]float64{
	// negative
	"terrible":      -3.4,
	"horrible":      -3.2,
	"awful":         -3.1,
	"worst":         -3.1,
	"disgusting":    -3.0,
	"unacceptable":  -2.9,
	"furious":       -2.7,
	"useless":       -2.6,
	"broken":        -2.2,
	"scam":          -3.0,
	"angry":         -2.5,
	"hate":          -2.7,
	"disappointed":  -2.2,
	"disappointing": -2.2,
	"frustrated":    -2.3,
	"frustrating":   -2.3,
	"annoyed":       -1.8,
	"annoying":      -1.8,
	"bad":           -1.9,
	"poor":          -1.9,
	"slow":          -1.4,
	"confusing":     -1.4,
	"confused":      -1.2,
	"problem":       -1.2,
	"problems":      -1.3,
	"issue":         -1.0,
	"issues":        -1.1,
	"error":         -1.3,
	"errors":        -1.4,
	"bug":           -1.3,
	"bugs":          -1.4,
	"crash":         -1.8,
	"crashes":       -1.9,
	"fail":          -2.0,
	"failed":        -2.0,
	"fails":         -2.0,
	"failure":       -2.1,
	"wrong":         -1.6,
	"lost":          -1.7,
	"stuck":         -1.5,
	"waiting":       -1.0,
	"delay":         -1.3,
	"delayed":       -1.4,
	"overcharged":   -2.4,
	"ridiculous":    -2.3,
	"pathetic":      -2.8,
	"nightmare":     -2.9,
	"cancel":        -1.2,
	"refund":        -0.8,

	// positive
	"love":       3.2,
	"loved":      3.0,
	"excellent":  3.2,
	"amazing":    3.1,
	"awesome":    3.1,
	"fantastic":  3.0,
	"wonderful":  2.9,
	"perfect":    3.0,
	"great":      2.6,
	"good":       1.9,
	"nice":       1.8,
	"happy":      2.2,
	"pleased":    2.1,
	"helpful":    2.0,
	"thanks":     1.7,
	"thank":      1.7,
	"appreciate": 2.0,
	"fast":       1.4,
	"quick":      1.4,
	"easy":       1.6,
	"smooth":     1.7,
	"works":      1.2,
	"working":    1.1,
	"resolved":   1.8,
	"fixed":      1.6,
	"best":       2.8,
	"impressed":  2.4,
	"delighted":  3.0,
	"glad":       2.0,
}

// Boosters scale the valence of the word they precede. Negative
// entries are dampeners.
var boosters = map[string]float64{
	"absolutely": 0.293,
	"completely": 0.293,
	"extremely":  0.293,
	"incredibly": 0.293,
	"utterly":    0.293,
	"totally":    0.267,
	"really":     0.267,
	"very":       0.267,
	"so":         0.2,
	"quite":      0.15,
	"somewhat":   -0.267,
	"slightly":   -0.293,
	"barely":     -0.293,
}

// Negators flip the valence of a nearby sentiment word.
var negators = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"cannot":  true,
	"can't":   true,
	"won't":   true,
	"don't":   true,
	"doesn't": true,
	"didn't":  true,
	"isn't":   true,
	"wasn't":  true,
	"aren't":  true,
	"ain't":   true,
	"without": true,
}

// Contrastive conjunctions mark a polarity pivot; their presence flags
// the text as ambiguous and the model method weights the clause that
// follows them higher.
var contrastives = map[string]bool{
	"but":          true,
	"however":      true,
	"although":     true,
	"though":       true,
	"yet":          true,
	"nevertheless": true,
}

// Emotion lexicons for sub-score detection.
var emotionWords = map[string][]string{
	"anger":       {"angry", "furious", "mad", "irritated", "outraged", "livid"},
	"confusion":   {"confused", "confusing", "unclear", "unsure", "lost", "baffled"},
	"delight":     {"happy", "excited", "great", "amazing", "wonderful", "delighted", "love"},
	"frustration": {"frustrated", "frustrating", "annoyed", "annoying", "tired", "sick", "enough"},
}

// Topic keywords for support-topic tagging.
var topicWords = map[string][]string{
	"billing":   {"payment", "bill", "billing", "charge", "charged", "invoice", "subscription", "overcharged"},
	"technical": {"error", "bug", "crash", "broken", "working", "login", "loading", "timeout"},
	"account":   {"account", "password", "register", "signup", "profile", "email"},
	"product":   {"feature", "product", "service", "functionality", "app"},
	"refund":    {"refund", "cancel", "return", "money"},
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
	"does": true, "did": true, "will": true, "would": true, "could": true,
	"should": true, "may": true, "might": true, "can": true, "this": true,
	"that": true, "these": true, "those": true, "i": true, "you": true,
	"he": true, "she": true, "it": true, "we": true, "they": true, "me": true,
	"him": true, "her": true, "us": true, "them": true, "my": true, "your": true,
	"its": true, "am": true, "as": true, "so": true, "very": true, "just": true,
}
