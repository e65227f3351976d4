package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRuleAdminContract runs a suite of tests to verify that a RuleAdmin implementation
// adheres to the defined interface contract.
func RunRuleAdminContract(t *testing.T, admin RuleAdmin) {
	ctx := context.Background()
	topic := domain.DictionaryArticlesTopic
	subscription := "contract-" + time.Now().Format("20060102150405.000000000")

	rule := domain.Rule{
		Name:          domain.RuleName(7),
		CorrelationID: subscription,
		Filter: domain.RoutingFilter{
			Expression: "sys.label IN (@w1, @w2)",
			Parameters: map[string]string{"@w1": "cat", "@w2": "sit"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	t.Run("Create and Get", func(t *testing.T) {
		err := admin.CreateRule(ctx, topic, subscription, rule)
		require.NoError(t, err, "CreateRule should not return error")

		got, err := admin.GetRule(ctx, topic, subscription, rule.Name)
		require.NoError(t, err, "GetRule should not return error")
		assert.Equal(t, rule.Name, got.Name)
		assert.Equal(t, rule.CorrelationID, got.CorrelationID)
		assert.Equal(t, rule.Filter, got.Filter)
	})

	t.Run("Create Duplicate", func(t *testing.T) {
		dup := rule
		dup.Filter = domain.RoutingFilter{
			Expression: "sys.label IN (@w1)",
			Parameters: map[string]string{"@w1": "dog"},
		}
		err := admin.CreateRule(ctx, topic, subscription, dup)
		assert.ErrorIs(t, err, domain.ErrDuplicateRule)

		// The original rule must survive.
		got, err := admin.GetRule(ctx, topic, subscription, rule.Name)
		require.NoError(t, err)
		assert.Equal(t, rule.Filter, got.Filter, "duplicate create must not overwrite")
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := admin.GetRule(ctx, topic, subscription, "paragraph-999999-rule")
		assert.ErrorIs(t, err, domain.ErrRuleNotFound)
	})

	t.Run("Same Name Other Subscription", func(t *testing.T) {
		err := admin.CreateRule(ctx, topic, subscription+"-other", rule)
		assert.NoError(t, err, "rule names are scoped by subscription")
	})

	t.Run("Concurrent Create", func(t *testing.T) {
		race := rule
		race.Name = domain.RuleName(42)

		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = admin.CreateRule(ctx, topic, subscription, race)
			}(i)
		}
		wg.Wait()

		created := 0
		for _, err := range errs {
			if err == nil {
				created++
				continue
			}
			assert.ErrorIs(t, err, domain.ErrDuplicateRule)
		}
		assert.Equal(t, 1, created, "exactly one concurrent create must win")
	})
}

// ReadBackFunc returns every message an adapter accepted for dest, in send order.
type ReadBackFunc func(t *testing.T, dest domain.Destination) []domain.OutboundMessage

// RunSenderContract runs a suite of tests to verify that a Sender implementation
// adheres to the defined interface contract.
func RunSenderContract(t *testing.T, sender Sender, readBack ReadBackFunc) {
	ctx := context.Background()
	suffix := time.Now().Format("150405.000000000")

	t.Run("Send Single", func(t *testing.T) {
		dest := domain.Queue("contract-single-" + suffix)
		msg := domain.OutboundMessage{
			ID:            "m-1",
			CorrelationID: "c1",
			ContentType:   domain.ContentTypeJSON,
			Body:          []byte(`{"text":"hi"}`),
			Properties:    map[string]string{"ParagraphNumber": "7"},
		}
		require.NoError(t, sender.Send(ctx, dest, msg))

		got := readBack(t, dest)
		require.Len(t, got, 1)
		assert.Equal(t, msg.ID, got[0].ID)
		assert.Equal(t, msg.CorrelationID, got[0].CorrelationID)
		assert.Equal(t, msg.Body, got[0].Body)
		assert.Equal(t, msg.Properties, got[0].Properties)
	})

	t.Run("Send Batch", func(t *testing.T) {
		dest := domain.Topic("contract-batch-" + suffix)
		var batch []domain.OutboundMessage
		for i := 0; i < 5; i++ {
			batch = append(batch, domain.OutboundMessage{
				ID:            fmt.Sprintf("c1-term%d", i),
				CorrelationID: "c1",
				Subject:       domain.SubjectLemma,
				Body:          []byte(fmt.Sprintf("term%d", i)),
			})
		}
		require.NoError(t, sender.Send(ctx, dest, batch...))

		got := readBack(t, dest)
		require.Len(t, got, len(batch))
		for i := range batch {
			assert.Equal(t, batch[i].ID, got[i].ID)
			assert.Equal(t, domain.SubjectLemma, got[i].Subject)
		}
	})

	t.Run("Send Empty Batch", func(t *testing.T) {
		dest := domain.Topic("contract-empty-" + suffix)
		require.NoError(t, sender.Send(ctx, dest))
		assert.Empty(t, readBack(t, dest))
	})
}
