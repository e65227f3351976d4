// Package terms derives routing terms from an annotated document.
package terms

import "github.com/aretw0/polyglot/pkg/domain"

// Extractor selects content lemmas from a document.
type Extractor struct {
	// KeepStopwords admits stopword tokens that otherwise satisfy the
	// alphabetic and length rules.
	KeepStopwords bool
}

// Extract returns the distinct root forms of alphabetic tokens whose root form
// is longer than one rune. Stopwords are dropped unless KeepStopwords is set.
func (e Extractor) Extract(doc *domain.AnnotatedDocument) domain.TermSet {
	set := domain.NewTermSet()
	if doc == nil {
		return set
	}
	for _, tok := range doc.Tokens {
		if !tok.IsAlpha || tok.Length() <= 1 {
			continue
		}
		if tok.IsStop && !e.KeepStopwords {
			continue
		}
		set.Add(tok.Lemma)
	}
	return set
}

// Extract uses the default Extractor.
func Extract(doc *domain.AnnotatedDocument) domain.TermSet {
	return Extractor{}.Extract(doc)
}
