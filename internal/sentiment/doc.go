// Package sentiment scores ticket content.
//
// Two methods are available: a lexicon method tuned for short texts and
// a clause-weighted model method for longer or ambiguous texts. Method
// selection is a pure function of text length and an ambiguity signal,
// so identical input and configuration always produce identical
// results.
package sentiment
