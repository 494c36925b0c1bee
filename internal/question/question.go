// Package question normalizes question text so cache keys and question
// matching agree on what counts as the same question.
package question

import "strings"

// Normalize lower-cases the question and collapses all runs of
// whitespace to single spaces. Deterministic and total: any input,
// including empty, yields a valid key component.
func Normalize(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
