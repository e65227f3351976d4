package domain

import "unicode/utf8"

// Token is a single annotated token.
type Token struct {
	ID      int    `json:"id"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Text    string `json:"text"`
	Lemma   string `json:"lemma"`
	IsAlpha bool   `json:"is_alpha"`
	IsStop  bool   `json:"is_stop"`
	IsPunct bool   `json:"is_punct"`
}

// Length is the rune length of the token's root form.
func (t Token) Length() int {
	return utf8.RuneCountInString(t.Lemma)
}

// AnnotatedDocument is the annotator's structured result for one paragraph.
// Its canonical interchange form is JSON.
type AnnotatedDocument struct {
	Model  string  `json:"model"`
	Text   string  `json:"text"`
	Tokens []Token `json:"tokens"`
}
