package domain_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_ParagraphNumber(t *testing.T) {
	tests := []struct {
		name    string
		props   map[string]string
		want    int
		wantErr error
	}{
		{"present", map[string]string{"ParagraphNumber": "7"}, 7, nil},
		{"padded", map[string]string{"ParagraphNumber": " 12 "}, 12, nil},
		{"missing", map[string]string{}, 0, domain.ErrMissingParagraphNumber},
		{"nil bag", nil, 0, domain.ErrMissingParagraphNumber},
		{"not a number", map[string]string{"ParagraphNumber": "seven"}, 0, domain.ErrInvalidParagraphNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := domain.Message{Properties: tt.props}.ParagraphNumber()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestMessage_IsWarmup(t *testing.T) {
	assert.True(t, domain.Message{ID: "warmup-message"}.IsWarmup())
	assert.False(t, domain.Message{ID: "warmup-message-2"}.IsWarmup())
}

func TestCloneProperties(t *testing.T) {
	in := map[string]string{"a": "1"}
	out := domain.CloneProperties(in)
	out["a"] = "2"
	assert.Equal(t, "1", in["a"])
	assert.NotNil(t, domain.CloneProperties(nil))
}

func TestTermSet_JSON(t *testing.T) {
	data, err := json.Marshal(domain.NewTermSet())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = json.Marshal(domain.NewTermSet("sit", "Cat", "cat"))
	require.NoError(t, err)
	assert.Equal(t, `["cat","sit"]`, string(data))

	var set domain.TermSet
	require.NoError(t, json.Unmarshal([]byte(`["dog","cat"]`), &set))
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has("dog"))
}

func TestToken_Length(t *testing.T) {
	assert.Equal(t, 4, domain.Token{Lemma: "café"}.Length())
}

func TestRuleName(t *testing.T) {
	assert.Equal(t, "paragraph-3-rule", domain.RuleName(3))
	assert.Equal(t, "paragraph-0-rule", domain.RuleName(0))
}

func TestDestination_String(t *testing.T) {
	assert.Equal(t, "queue:annotated-paragraphs", domain.Queue(domain.AnnotatedParagraphsQueue).String())
	assert.Equal(t, "topic:lemmas", domain.Topic(domain.LemmasTopic).String())
}

func TestFailedTracks(t *testing.T) {
	docErr := &domain.DispatchError{Track: domain.TrackDocument, Err: domain.ErrTransport}
	termsErr := &domain.DispatchError{Track: domain.TrackTerms, Err: domain.ErrTransport}

	assert.Nil(t, domain.FailedTracks(nil))
	assert.Nil(t, domain.FailedTracks(errors.New("other")))
	assert.Equal(t, []domain.Track{domain.TrackTerms}, domain.FailedTracks(fmt.Errorf("wrapped: %w", termsErr)))
	assert.Equal(t, []domain.Track{domain.TrackDocument, domain.TrackTerms},
		domain.FailedTracks(errors.Join(errors.New("provision"), errors.Join(docErr, termsErr))))

	assert.ErrorIs(t, docErr, domain.ErrTransport)
	var de *domain.DispatchError
	require.ErrorAs(t, errors.Join(nil, termsErr), &de)
	assert.Equal(t, domain.TrackTerms, de.Track)
}
