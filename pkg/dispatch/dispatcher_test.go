package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/polyglot/pkg/adapters/memory"
	"github.com/aretw0/polyglot/pkg/dispatch"
	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	docQueue   = domain.Queue(domain.AnnotatedParagraphsQueue)
	lemmaTopic = domain.Topic(domain.LemmasTopic)
)

func sampleDoc() *domain.AnnotatedDocument {
	return &domain.AnnotatedDocument{
		Model: "en_basic",
		Text:  "The cats sat.",
		Tokens: []domain.Token{
			{ID: 0, Start: 0, End: 3, Text: "The", Lemma: "the", IsAlpha: true, IsStop: true},
			{ID: 1, Start: 4, End: 8, Text: "cats", Lemma: "cat", IsAlpha: true},
			{ID: 2, Start: 9, End: 12, Text: "sat", Lemma: "sit", IsAlpha: true},
			{ID: 3, Start: 12, End: 13, Text: ".", Lemma: ".", IsPunct: true},
		},
	}
}

func TestDispatch_BothTracks(t *testing.T) {
	docs := memory.NewBus()
	topics := memory.NewBus()
	d := dispatch.New(docs, topics)
	props := map[string]string{"ParagraphNumber": "7", "Book": "b1"}

	err := d.Dispatch(context.Background(), sampleDoc(), domain.NewTermSet("cat", "sit"), "c1", props)
	require.NoError(t, err)

	// Track A
	docMsgs := docs.Messages(docQueue)
	require.Len(t, docMsgs, 1)
	assert.Equal(t, "c1", docMsgs[0].CorrelationID)
	assert.Equal(t, props, docMsgs[0].Properties)
	assert.NotEmpty(t, docMsgs[0].ID)
	var decoded domain.AnnotatedDocument
	require.NoError(t, json.Unmarshal(docMsgs[0].Body, &decoded))
	assert.Equal(t, *sampleDoc(), decoded)

	// Track B: aggregate first, then the per-term batch.
	termMsgs := topics.Messages(lemmaTopic)
	require.Len(t, termMsgs, 3)
	assert.JSONEq(t, `["cat","sit"]`, string(termMsgs[0].Body))
	assert.Equal(t, "c1", termMsgs[0].CorrelationID)
	assert.Equal(t, props, termMsgs[0].Properties)

	assert.Equal(t, "c1-cat", termMsgs[1].ID)
	assert.Equal(t, "cat", string(termMsgs[1].Body))
	assert.Equal(t, domain.SubjectLemma, termMsgs[1].Subject)
	assert.Equal(t, props, termMsgs[1].Properties)
	assert.Equal(t, "c1-sit", termMsgs[2].ID)

	assert.Equal(t, 2, topics.Batches(lemmaTopic), "aggregate and per-term batch are two sends")
	assert.Empty(t, docs.Messages(lemmaTopic))
	assert.Empty(t, topics.Messages(docQueue))
}

func TestDispatch_EmptyTermSet(t *testing.T) {
	bus := memory.NewBus()
	d := dispatch.New(bus, bus)

	err := d.Dispatch(context.Background(), sampleDoc(), domain.NewTermSet(), "c1", nil)
	require.NoError(t, err)

	termMsgs := bus.Messages(lemmaTopic)
	require.Len(t, termMsgs, 1)
	assert.Equal(t, "[]", string(termMsgs[0].Body))
	assert.Equal(t, 1, bus.Batches(lemmaTopic))
	assert.Len(t, bus.Messages(docQueue), 1)
}

func TestDispatch_TermsFailureKeepsDocument(t *testing.T) {
	bus := memory.NewBus()
	boom := errors.New("topic unavailable")
	bus.FailOn(lemmaTopic, boom)
	d := dispatch.New(bus, bus)

	err := d.Dispatch(context.Background(), sampleDoc(), domain.NewTermSet("cat"), "c1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var de *domain.DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.TrackTerms, de.Track)
	assert.Equal(t, []domain.Track{domain.TrackTerms}, domain.FailedTracks(err))

	assert.Len(t, bus.Messages(docQueue), 1, "document track result stands")
}

func TestDispatch_DocumentFailureKeepsTerms(t *testing.T) {
	bus := memory.NewBus()
	bus.FailOn(docQueue, errors.New("queue unavailable"))
	d := dispatch.New(bus, bus)

	err := d.Dispatch(context.Background(), sampleDoc(), domain.NewTermSet("cat"), "c1", nil)
	require.Error(t, err)
	assert.Equal(t, []domain.Track{domain.TrackDocument}, domain.FailedTracks(err))
	assert.Len(t, bus.Messages(lemmaTopic), 2)
}

func TestDispatch_BothFail(t *testing.T) {
	bus := memory.NewBus()
	bus.FailOn(docQueue, errors.New("a"))
	bus.FailOn(lemmaTopic, errors.New("b"))
	d := dispatch.New(bus, bus)

	err := d.Dispatch(context.Background(), sampleDoc(), domain.NewTermSet("cat"), "c1", nil)
	require.Error(t, err)
	assert.ElementsMatch(t, []domain.Track{domain.TrackDocument, domain.TrackTerms}, domain.FailedTracks(err))
}

// rendezvousSender blocks every Send until both tracks have arrived, which only
// happens if they run concurrently.
type rendezvousSender struct {
	bus     *memory.Bus
	arrived sync.WaitGroup
}

func (s *rendezvousSender) Send(ctx context.Context, dest domain.Destination, msgs ...domain.OutboundMessage) error {
	if dest == docQueue || len(msgs) == 1 && dest == lemmaTopic && msgs[0].Subject == "" {
		s.arrived.Done()
	}
	done := make(chan struct{})
	go func() {
		s.arrived.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		return errors.New("tracks did not run concurrently")
	}
	return s.bus.Send(ctx, dest, msgs...)
}

func TestDispatch_TracksRunConcurrently(t *testing.T) {
	s := &rendezvousSender{bus: memory.NewBus()}
	s.arrived.Add(2)
	d := dispatch.New(s, s)

	err := d.Dispatch(context.Background(), sampleDoc(), domain.NewTermSet("cat"), "c1", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, s.bus.Total())
}

func TestDispatch_HooksAndIDs(t *testing.T) {
	bus := memory.NewBus()
	var mu sync.Mutex
	events := map[domain.Track]*domain.DispatchEvent{}
	hooks := domain.LifecycleHooks{
		OnDispatched: func(ctx context.Context, e *domain.DispatchEvent) {
			mu.Lock()
			defer mu.Unlock()
			events[e.Track] = e
		},
	}
	d := dispatch.New(bus, bus,
		dispatch.WithLifecycleHooks(hooks),
		dispatch.WithIDGenerator(func() string { return "fixed" }),
	)

	require.NoError(t, d.Dispatch(context.Background(), sampleDoc(), domain.NewTermSet("cat", "sit"), "c1", nil))

	require.Contains(t, events, domain.TrackDocument)
	require.Contains(t, events, domain.TrackTerms)
	assert.Equal(t, 1, events[domain.TrackDocument].Messages)
	assert.Equal(t, 3, events[domain.TrackTerms].Messages)
	assert.Equal(t, "c1", events[domain.TrackTerms].CorrelationID)
	assert.Equal(t, "fixed", bus.Messages(docQueue)[0].ID)
}

func TestTermMessages(t *testing.T) {
	msgs := dispatch.TermMessages(domain.NewTermSet("Sit", "cat"), "c9", map[string]string{"k": "v"})
	require.Len(t, msgs, 2)
	assert.Equal(t, "c9-cat", msgs[0].ID)
	assert.Equal(t, "c9-sit", msgs[1].ID)
	assert.Equal(t, "sit", string(msgs[1].Body))
	assert.Equal(t, "v", msgs[1].Properties["k"])
}
