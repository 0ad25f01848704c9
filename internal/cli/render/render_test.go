package render

import (
	"strings"
	"testing"

	"codefix/internal/highlight"

	"github.com/stretchr/testify/assert"
)

func sampleResult() FixResult {
	return FixResult{
		FixedCode:   "x = 1\nprint(x)\n",
		Explanation: "ok",
		Suggestions: []string{"s1"},
		Changes: []highlight.Change{
			{LineStart: 1, OldCode: "x=1", NewCode: "x = 1", Explanation: "spacing"},
			{LineStart: 2, OldCode: "debug()", Comment: "removed debug"},
			{LineStart: 1, NewCode: "missing", Explanation: "never placed"},
		},
	}
}

func TestFixPlain(t *testing.T) {
	got := New(false).Fix(sampleResult())

	want := "== Fixed code ==\n" +
		"{+x = 1+}[1]\n[-print(x)-][2]\n" +
		"\n== Explanation ==\nok\n" +
		"\n== Suggestions ==\n- s1\n" +
		"\n== Changes ==\n" +
		"[1] spacing\n    before: x=1\n    after:  x = 1\n" +
		"[2] removed debug\n    before: debug()\n    after:  [Deleted]\n"
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "never placed")
}

func TestFixWithoutChanges(t *testing.T) {
	got := New(false).Fix(FixResult{FixedCode: "pass"})
	assert.Equal(t, "== Fixed code ==\npass\n", got)
}

func TestFixColorKeepsContent(t *testing.T) {
	got := New(true).Fix(sampleResult())
	for _, fragment := range []string{"x = 1", "print(x)", "[1]", "[2]", "before: x=1", "[Deleted]", "- s1"} {
		assert.True(t, strings.Contains(got, fragment), "missing %q in %q", fragment, got)
	}
	assert.NotContains(t, got, "{+")
}

func TestIndentMultiline(t *testing.T) {
	assert.Equal(t, "a\n            b", indent("a\nb\n"))
}
