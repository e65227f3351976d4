package annotate

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/polyglot/pkg/domain"
)

// Annotator is a rule-based tokenizer and lemmatizer.
// It is immutable after construction and safe for concurrent use.
type Annotator struct {
	name       string
	stopwords  map[string]struct{}
	exceptions map[string]string
	suffixes   []SuffixRule
}

// New compiles a model into an Annotator.
func New(m *Model) *Annotator {
	a := &Annotator{
		name:       m.Name,
		stopwords:  make(map[string]struct{}, len(m.Stopwords)),
		exceptions: make(map[string]string, len(m.Exceptions)),
		suffixes:   make([]SuffixRule, 0, len(m.Suffixes)),
	}
	for _, w := range m.Stopwords {
		a.stopwords[strings.ToLower(w)] = struct{}{}
	}
	for k, v := range m.Exceptions {
		a.exceptions[strings.ToLower(k)] = strings.ToLower(v)
	}
	for _, r := range m.Suffixes {
		r.Suffix = strings.ToLower(r.Suffix)
		r.Replace = strings.ToLower(r.Replace)
		a.suffixes = append(a.suffixes, r)
	}
	return a
}

// Load resolves and compiles a model in one step.
func Load(name, dir string) (*Annotator, error) {
	m, err := LoadModel(name, dir)
	if err != nil {
		return nil, err
	}
	return New(m), nil
}

// Name returns the model name.
func (a *Annotator) Name() string {
	return a.name
}

// Annotate splits text into word and punctuation tokens and assigns each a root form.
// Offsets are byte offsets into text.
func (a *Annotator) Annotate(ctx context.Context, text string) (*domain.AnnotatedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &domain.AnnotatedDocument{
		Model:  a.name,
		Text:   text,
		Tokens: []domain.Token{},
	}

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		doc.Tokens = append(doc.Tokens, a.wordToken(len(doc.Tokens), start, end, text[start:end]))
		start = -1
	}

	for i, r := range text {
		switch {
		case isWordRune(r):
			if start < 0 {
				start = i
			}
		case unicode.IsSpace(r):
			flush(i)
		default:
			flush(i)
			end := i + utf8.RuneLen(r)
			doc.Tokens = append(doc.Tokens, domain.Token{
				ID:      len(doc.Tokens),
				Start:   i,
				End:     end,
				Text:    text[i:end],
				Lemma:   text[i:end],
				IsPunct: unicode.IsPunct(r) || unicode.IsSymbol(r),
			})
		}
	}
	flush(len(text))

	return doc, nil
}

func (a *Annotator) wordToken(id, start, end int, word string) domain.Token {
	lower := strings.ToLower(word)
	alpha := isAlpha(word)
	lemma := lower
	if alpha {
		lemma = a.lemmatize(lower)
	}
	_, stop := a.stopwords[lower]
	return domain.Token{
		ID:      id,
		Start:   start,
		End:     end,
		Text:    word,
		Lemma:   lemma,
		IsAlpha: alpha,
		IsStop:  stop,
	}
}

// lemmatize applies exceptions first, then the first matching suffix rule.
func (a *Annotator) lemmatize(word string) string {
	if lemma, ok := a.exceptions[word]; ok {
		return lemma
	}
	n := utf8.RuneCountInString(word)
	for _, r := range a.suffixes {
		if !strings.HasSuffix(word, r.Suffix) {
			continue
		}
		if n-utf8.RuneCountInString(r.Suffix) < r.MinStem {
			continue
		}
		return strings.TrimSuffix(word, r.Suffix) + r.Replace
	}
	return word
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r) {
			return false
		}
	}
	return true
}
