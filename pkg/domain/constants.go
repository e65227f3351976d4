package domain

// Reserved identifiers and fixed destination names.
const (
	// WarmupMessageID marks a liveness probe. It is accepted and produces no output.
	WarmupMessageID = "warmup-message"

	// PropertyParagraphNumber is the property bag key carrying the paragraph index.
	PropertyParagraphNumber = "ParagraphNumber"

	// AnnotatedParagraphsQueue receives the serialized annotated document.
	AnnotatedParagraphsQueue = "annotated-paragraphs"

	// LemmasTopic receives the aggregate term set and the per-term messages.
	LemmasTopic = "lemmas"

	// DictionaryArticlesTopic owns the subscriptions that routing rules are created on.
	DictionaryArticlesTopic = "dictionary-articles"

	// SubjectLemma is the subject of every per-term message.
	SubjectLemma = "lemma"

	// LabelField is the message field the routing filter matches against.
	LabelField = "sys.label"
)

// Content types used for outbound bodies.
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
)
