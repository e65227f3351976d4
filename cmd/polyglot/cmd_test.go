package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redisAdapter "github.com/aretw0/polyglot/pkg/adapters/redis"
	"github.com/aretw0/polyglot/pkg/domain"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "polyglot version "))
}

func TestInspectCommand_JSON(t *testing.T) {
	out, err := execute(t, "inspect", "--json", "The", "cats", "sat.")
	require.NoError(t, err)

	var got struct {
		Document domain.AnnotatedDocument `json:"document"`
		Terms    []string                 `json:"terms"`
		Filter   domain.RoutingFilter     `json:"filter"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"cat", "sit"}, got.Terms)
	assert.Len(t, got.Document.Tokens, 4)
	assert.Equal(t, "sys.label IN (@w1, @w2)", got.Filter.Expression)
}

func TestSendCommand(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	t.Setenv("POLYGLOT_QUEUES_CONNECTION", "redis://"+mr.Addr()+"/0")

	_, err = execute(t, "send", "--id", "m-1", "--correlation-id", "c-1", "-n", "4", "Dogs", "bark.")
	require.NoError(t, err)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()
	entries, err := client.XRange(context.Background(), "polyglot:paragraphs", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	msg, err := redisAdapter.DecodeMessage(entries[0].Values)
	require.NoError(t, err)
	assert.Equal(t, "m-1", msg.ID)
	assert.Equal(t, "c-1", msg.CorrelationID)
	assert.Equal(t, "4", msg.Properties[domain.PropertyParagraphNumber])
	assert.Equal(t, "Dogs bark.", string(msg.Body))
}

func TestReadText(t *testing.T) {
	text, err := readText(nil, strings.NewReader("from stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", text)

	text, err = readText([]string{"a", "b"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "a b", text)
}

func TestLoadConfig_RejectsUnknownLogFormat(t *testing.T) {
	_, err := execute(t, "inspect", "--log-format", "xml", "text")
	assert.Error(t, err)
	rootCmd.PersistentFlags().Set("log-format", "")
}
