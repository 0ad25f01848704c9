package highlight_test

import (
	"strings"
	"testing"

	"codefix/internal/highlight"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joinSpans(spans []highlight.Span) string {
	var b strings.Builder
	for _, span := range spans {
		b.WriteString(span.Text)
	}
	return b.String()
}

func TestRenderEndToEnd(t *testing.T) {
	text := "a\nb\nfoo\nc"
	changes := []highlight.Change{{LineStart: 3, OldCode: "bar", NewCode: "foo", Comment: "renamed"}}

	spans := highlight.Render(text, highlight.Map(text, changes))

	require.Len(t, spans, 3)
	assert.Equal(t, highlight.Span{Text: "a\nb\n"}, spans[0])
	assert.Equal(t, "foo", spans[1].Text)
	assert.True(t, spans[1].Highlighted)
	assert.False(t, spans[1].IsDeletion)
	assert.Equal(t, "renamed", spans[1].Change.Comment)
	assert.Equal(t, highlight.Span{Text: "\nc"}, spans[2])
}

func TestRenderNoSections(t *testing.T) {
	assert.Equal(t, []highlight.Span{{Text: "plain"}}, highlight.Render("plain", nil))
	assert.Empty(t, highlight.Render("", nil))
}

func TestRenderAdjacentSections(t *testing.T) {
	change := &highlight.Change{NewCode: "ab"}
	sections := []highlight.Section{
		{StartIndex: 0, EndIndex: 2, Change: change},
		{StartIndex: 2, EndIndex: 4, Change: change},
	}

	spans := highlight.Render("abab!", sections)

	require.Len(t, spans, 3)
	assert.True(t, spans[0].Highlighted)
	assert.True(t, spans[1].Highlighted)
	assert.Equal(t, "!", spans[2].Text)
	assert.False(t, spans[2].Highlighted)
}

func TestRenderCarriesDeletionFlag(t *testing.T) {
	text := "keep\nthis line\n"
	changes := []highlight.Change{{LineStart: 2, OldCode: "removed()"}}

	spans := highlight.Render(text, highlight.Map(text, changes))

	require.Len(t, spans, 3)
	assert.True(t, spans[1].IsDeletion)
	assert.Equal(t, "this line", spans[1].Text)
}

func TestRenderCoverage(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		changes []highlight.Change
	}{
		{name: "empty text", text: ""},
		{name: "no changes", text: "print('hi')\n"},
		{name: "trailing highlight", text: "x = 1\ny = 2", changes: []highlight.Change{{LineStart: 2, NewCode: "y = 2"}}},
		{name: "leading highlight", text: "x = 1\ny = 2", changes: []highlight.Change{{LineStart: 1, NewCode: "x"}}},
		{name: "deletion overlapping addition", text: "def f():\n    return 1\n", changes: []highlight.Change{
			{LineStart: 2, NewCode: "    return"},
			{LineStart: 2, OldCode: "pass"},
		}},
		{name: "zero width marker", text: "a\n\nb", changes: []highlight.Change{{LineStart: 2, OldCode: "x"}}},
		{name: "many", text: twoFoos, changes: []highlight.Change{
			{LineStart: 1, NewCode: "foo"},
			{LineStart: 10, NewCode: "foo"},
			{LineStart: 4, OldCode: "z"},
			{LineStart: 2, NewCode: "xxxxxxxxxxx\nxx"},
			{LineStart: 11, NewCode: "end"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := highlight.Render(tt.text, highlight.Map(tt.text, tt.changes))
			assert.Equal(t, tt.text, joinSpans(spans))
		})
	}
}
