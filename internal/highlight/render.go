package highlight

// Span is one contiguous piece of the fixed text. Highlighted spans carry the
// change they came from.
type Span struct {
	Text        string
	Highlighted bool
	IsDeletion  bool
	Change      *Change
}

// Render partitions text into alternating plain and highlighted spans.
// Sections must be sorted by StartIndex. Concatenating the Text of every
// returned span yields text exactly: a section that starts inside an earlier
// one is clipped to begin at the cursor.
func Render(text string, sections []Section) []Span {
	if text == "" {
		return nil
	}
	if len(sections) == 0 {
		return []Span{{Text: text}}
	}

	spans := make([]Span, 0, 2*len(sections)+1)
	cursor := 0
	for _, section := range sections {
		start := min(max(section.StartIndex, cursor), len(text))
		end := min(max(section.EndIndex, start), len(text))
		if start > cursor {
			spans = append(spans, Span{Text: text[cursor:start]})
		}
		spans = append(spans, Span{
			Text:        text[start:end],
			Highlighted: true,
			IsDeletion:  section.IsDeletion,
			Change:      section.Change,
		})
		cursor = end
	}
	if cursor < len(text) {
		spans = append(spans, Span{Text: text[cursor:]})
	}
	return spans
}
