// Package strings provides string utility functions.
package strings

// Pluralize returns singular or plural form based on count.
// Example: Pluralize("hospital", 1) returns "hospital", Pluralize("hospital", 2) returns "hospitals"
func Pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}
