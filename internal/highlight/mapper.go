package highlight

import (
	"cmp"
	"slices"
	"strings"
)

const (
	// searchBefore and searchAfter bound the window around the line hint in
	// which a replacement is looked up before falling back to a global search.
	searchBefore = 50
	searchAfter  = 200

	// deletionMarkerMax caps the width of a deletion marker in characters.
	deletionMarkerMax = 10
)

// Map resolves changes against fixedText. Changes are processed in order:
// earlier changes claim byte ranges first and later ones must avoid them.
// Changes whose replacement cannot be found unclaimed are dropped. Deletions
// always produce a short marker at the start of their hinted line and never
// take part in claims. The result is sorted by StartIndex; equal starts keep
// input order.
func Map(fixedText string, changes []Change) []Section {
	if fixedText == "" || len(changes) == 0 {
		return nil
	}

	m := &mapper{
		text:   fixedText,
		lines:  newLineIndex(fixedText),
		claims: newClaimSet(len(fixedText)),
	}

	sections := make([]Section, 0, len(changes))
	for i := range changes {
		change := &changes[i]
		if change.IsDeletion() {
			sections = append(sections, m.deletionMarker(i, change))
			continue
		}
		if section, ok := m.locate(i, change); ok {
			sections = append(sections, section)
		}
	}

	slices.SortStableFunc(sections, func(a, b Section) int {
		return cmp.Compare(a.StartIndex, b.StartIndex)
	})
	return sections
}

type mapper struct {
	text   string
	lines  lineIndex
	claims *claimSet
}

func (m *mapper) locate(index int, change *Change) (Section, bool) {
	needle := change.NewCode
	hint := m.lines.offset(change.LineStart)

	searchStart := max(0, hint-searchBefore)
	searchEnd := min(len(m.text), hint+searchAfter)
	for searchStart < searchEnd {
		found := strings.Index(m.text[searchStart:], needle)
		if found < 0 {
			break
		}
		start := searchStart + found
		if start >= searchEnd {
			break
		}
		if m.claims.free(start, start+len(needle)) {
			return m.accept(index, change, start), true
		}
		searchStart = start + 1
	}

	start := strings.Index(m.text, needle)
	if start >= 0 && m.claims.free(start, start+len(needle)) {
		return m.accept(index, change, start), true
	}
	return Section{}, false
}

func (m *mapper) accept(index int, change *Change, start int) Section {
	end := start + len(change.NewCode)
	m.claims.claim(start, end)
	return Section{
		StartIndex:  start,
		EndIndex:    end,
		ChangeIndex: index,
		Change:      change,
	}
}

func (m *mapper) deletionMarker(index int, change *Change) Section {
	start := m.lines.offset(change.LineStart)
	width := m.lines.prefixLen(m.text, change.LineStart, deletionMarkerMax)
	return Section{
		StartIndex:  start,
		EndIndex:    start + width,
		IsDeletion:  true,
		ChangeIndex: index,
		Change:      change,
	}
}
