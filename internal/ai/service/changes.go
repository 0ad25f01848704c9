package service

import (
	"fmt"
	"strings"

	"codefix/internal/highlight"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DeriveChanges builds changes from a line diff of original against fixed.
// Line numbers refer to fixed. Used when the model returns fixed code but
// no change list.
func DeriveChanges(original, fixed string) []highlight.Change {
	if original == fixed {
		return nil
	}

	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(original, fixed)
	diffs := dmp.DiffMain(chars1, chars2, false)
	lineDiffs := dmp.DiffCharsToLines(diffs, lineArray)

	var changes []highlight.Change
	line := 1
	for i := 0; i < len(lineDiffs); i++ {
		diff := lineDiffs[i]
		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			line += lineCount(diff.Text)

		case diffmatchpatch.DiffDelete, diffmatchpatch.DiffInsert:
			var removed, added string
			if diff.Type == diffmatchpatch.DiffDelete {
				removed = diff.Text
			} else {
				added = diff.Text
			}
			// A delete next to an insert is one modification.
			if i+1 < len(lineDiffs) && lineDiffs[i+1].Type != diffmatchpatch.DiffEqual && lineDiffs[i+1].Type != diff.Type {
				if lineDiffs[i+1].Type == diffmatchpatch.DiffInsert {
					added = lineDiffs[i+1].Text
				} else {
					removed = lineDiffs[i+1].Text
				}
				i++
			}

			span := max(lineCount(added), 1)
			comment := fmt.Sprintf("Changed lines %d-%d", line, line+span-1)
			changes = append(changes, highlight.Change{
				LineStart:   line,
				LineEnd:     line + span - 1,
				OldCode:     strings.TrimSuffix(removed, "\n"),
				NewCode:     strings.TrimSuffix(added, "\n"),
				Explanation: comment,
				Comment:     comment,
			})
			line += lineCount(added)
		}
	}
	return changes
}

// lineCount counts the lines in a diff chunk; a trailing newline ends the
// last line rather than starting a new one.
func lineCount(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
