// Package highlight maps AI-reported edits onto the fixed source text and
// splits that text into plain and highlighted spans for display.
package highlight

import "strings"

// Change is one AI-reported edit. Positions refer to the code before the fix.
type Change struct {
	LineStart   int    `json:"lineStart"`
	LineEnd     int    `json:"lineEnd"`
	CharStart   int    `json:"charStart"`
	CharEnd     int    `json:"charEnd"`
	OldCode     string `json:"oldCode"`
	NewCode     string `json:"newCode"`
	Explanation string `json:"explanation"`
	Comment     string `json:"comment"`
}

// IsDeletion reports whether the change adds nothing to the fixed text.
// Only NewCode decides this; OldCode is ignored.
func (c Change) IsDeletion() bool {
	return strings.TrimSpace(c.NewCode) == ""
}

// Section is a half-open byte range [StartIndex, EndIndex) of the fixed text
// resolved for one Change.
type Section struct {
	StartIndex  int     `json:"startIndex"`
	EndIndex    int     `json:"endIndex"`
	IsDeletion  bool    `json:"isDeletion"`
	ChangeIndex int     `json:"changeIndex"`
	Change      *Change `json:"-"`
}

// Len returns the number of bytes covered by the section.
func (s Section) Len() int {
	return s.EndIndex - s.StartIndex
}
