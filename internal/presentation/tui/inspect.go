package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/polyglot/pkg/domain"
)

// Inspection is everything `polyglot inspect` shows for one text.
type Inspection struct {
	Document  *domain.AnnotatedDocument `json:"document"`
	Terms     domain.TermSet            `json:"terms"`
	Filter    *domain.RoutingFilter     `json:"filter,omitempty"`
	FilterErr error                     `json:"-"`
}

// Markdown formats the inspection as a markdown report.
func (in Inspection) Markdown() string {
	var b strings.Builder

	model := ""
	if in.Document != nil {
		model = in.Document.Model
	}
	fmt.Fprintf(&b, "# Paragraph\n\nModel: `%s`\n\n", model)

	b.WriteString("## Tokens\n\n")
	b.WriteString("| # | Text | Lemma | Span | Flags |\n")
	b.WriteString("|---|------|-------|------|-------|\n")
	if in.Document != nil {
		for _, t := range in.Document.Tokens {
			fmt.Fprintf(&b, "| %d | %s | %s | %d-%d | %s |\n",
				t.ID, cell(t.Text), cell(t.Lemma), t.Start, t.End, flags(t))
		}
	}

	b.WriteString("\n## Terms\n\n")
	if in.Terms.Len() == 0 {
		b.WriteString("_none: no rule would be provisioned_\n")
	}
	for _, t := range in.Terms.Sorted() {
		fmt.Fprintf(&b, "- %s\n", t)
	}

	b.WriteString("\n## Filter\n\n")
	switch {
	case in.FilterErr != nil:
		fmt.Fprintf(&b, "**error:** %s\n", in.FilterErr)
	case in.Filter != nil:
		fmt.Fprintf(&b, "```\n%s\n```\n\n", in.Filter.Expression)
		b.WriteString("| Parameter | Term |\n|---|---|\n")
		for i := 1; i <= len(in.Filter.Parameters); i++ {
			name := fmt.Sprintf("@w%d", i)
			fmt.Fprintf(&b, "| %s | %s |\n", name, cell(in.Filter.Parameters[name]))
		}
	default:
		b.WriteString("_none_\n")
	}
	return b.String()
}

func flags(t domain.Token) string {
	var f []string
	if t.IsAlpha {
		f = append(f, "alpha")
	}
	if t.IsStop {
		f = append(f, "stop")
	}
	if t.IsPunct {
		f = append(f, "punct")
	}
	return strings.Join(f, " ")
}

// cell escapes characters that break a markdown table row.
func cell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ", "`", "\\`").Replace(s)
}
