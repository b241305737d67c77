// Package text is the string library scripts get by default: character
// classification, tokenizing, integer parsing, indexing and explosion.
//
// Strings are byte strings. Classification uses the C locale, so only ASCII
// letters, digits and whitespace classify as true.
package text
