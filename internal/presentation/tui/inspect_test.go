package tui_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/polyglot/internal/presentation/tui"
	"github.com/aretw0/polyglot/pkg/annotate"
	"github.com/aretw0/polyglot/pkg/domain"
	"github.com/aretw0/polyglot/pkg/filter"
	"github.com/aretw0/polyglot/pkg/terms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspection_Markdown(t *testing.T) {
	a, err := annotate.Load("", "")
	require.NoError(t, err)
	doc, err := a.Annotate(context.Background(), "The cats sat.")
	require.NoError(t, err)

	set := terms.Extract(doc)
	f, err := filter.Build(set)
	require.NoError(t, err)

	md := tui.Inspection{Document: doc, Terms: set, Filter: &f}.Markdown()
	assert.Contains(t, md, "| 1 | cats | cat | 4-8 | alpha |")
	assert.Contains(t, md, "| 0 | The | the | 0-3 | alpha stop |")
	assert.Contains(t, md, "- cat\n- sit\n")
	assert.Contains(t, md, "sys.label IN (@w1, @w2)")
	assert.Contains(t, md, "| @w2 | sit |")
}

func TestInspection_Empty(t *testing.T) {
	md := tui.Inspection{Document: &domain.AnnotatedDocument{}, Terms: domain.NewTermSet()}.Markdown()
	assert.Contains(t, md, "no rule would be provisioned")
	assert.True(t, strings.HasSuffix(md, "_none_\n"))
}

func TestInspection_FilterError(t *testing.T) {
	md := tui.Inspection{Terms: domain.NewTermSet("a", "b"), FilterErr: errors.New("too large")}.Markdown()
	assert.Contains(t, md, "**error:** too large")
}

func TestInspection_EscapesPipes(t *testing.T) {
	doc := &domain.AnnotatedDocument{Tokens: []domain.Token{{ID: 0, Text: "|", Lemma: "|", IsPunct: true}}}
	md := tui.Inspection{Document: doc}.Markdown()
	assert.Contains(t, md, `| 0 | \| | \| | 0-0 | punct |`)
}

func TestNewRenderer_PlainOutsideTerminal(t *testing.T) {
	var buf bytes.Buffer
	render := tui.NewRenderer(&buf)
	out, err := render("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
	assert.False(t, tui.IsTerminal(&buf))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.0.0\n")
	assert.Contains(t, buf.String(), "version 1.0.0")
}
