package domain

import (
	"errors"
	"fmt"
)

// ErrAnnotation is returned when the annotator fails or yields malformed output.
// It is fatal to the invocation and no partial output is emitted.
var ErrAnnotation = errors.New("annotation failed")

// ErrInvalidBody is returned when the message body is not valid UTF-8 text.
var ErrInvalidBody = errors.New("message body is not valid utf-8")

// ErrModelNotFound is returned when the requested annotation model cannot be located.
var ErrModelNotFound = errors.New("annotation model not found")

// ErrDuplicateRule is returned when a rule with the same name already exists on the subscription.
// Callers treat it as "already provisioned".
var ErrDuplicateRule = errors.New("rule already exists")

// ErrTransport is returned when the broker rejects or cannot serve a request.
var ErrTransport = errors.New("transport failure")

// ErrEmptyTermSet is returned when a filter is requested for zero terms.
var ErrEmptyTermSet = errors.New("term set is empty")

// ErrFilterTooLarge is returned when a filter would exceed the routing layer's limits.
var ErrFilterTooLarge = errors.New("routing filter exceeds limits")

// ErrMissingParagraphNumber is returned when the property bag lacks ParagraphNumber.
var ErrMissingParagraphNumber = errors.New("missing ParagraphNumber property")

// ErrInvalidParagraphNumber is returned when ParagraphNumber is not an integer.
var ErrInvalidParagraphNumber = errors.New("invalid ParagraphNumber property")

// Track identifies one of the two dispatcher delivery tracks.
type Track string

const (
	// TrackDocument delivers the annotated document.
	TrackDocument Track = "document"
	// TrackTerms delivers the aggregate term set and the per-term batch.
	TrackTerms Track = "terms"
)

// DispatchError reports a failure on a single delivery track.
// The other track's result is independent and stands.
type DispatchError struct {
	Track Track
	Err   error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s track: %v", e.Track, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// FailedTracks lists every track named by DispatchErrors inside err.
func FailedTracks(err error) []Track {
	var tracks []Track
	var visit func(error)
	visit = func(err error) {
		if err == nil {
			return
		}
		if de, ok := err.(*DispatchError); ok {
			tracks = append(tracks, de.Track)
			return
		}
		switch x := err.(type) {
		case interface{ Unwrap() []error }:
			for _, e := range x.Unwrap() {
				visit(e)
			}
		case interface{ Unwrap() error }:
			visit(x.Unwrap())
		}
	}
	visit(err)
	return tracks
}

// ErrRuleNotFound is returned when a rule lookup finds nothing.
var ErrRuleNotFound = errors.New("rule not found")
