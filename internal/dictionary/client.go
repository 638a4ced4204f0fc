// Package dictionary looks up English words in external dictionary APIs.
// Lookups fill in phonetics and English definitions for vocabulary entries
// that were created without them.
package dictionary

import "context"

// Definition is one sense of a word.
type Definition struct {
	PartOfSpeech string
	Definition   string
	Example      string
}

// LookupResult contains the result of a dictionary lookup.
type LookupResult struct {
	Word        string
	Phonetic    string
	AudioURL    string
	Definitions []Definition
}

// Client defines the interface for dictionary API providers.
type Client interface {
	Lookup(ctx context.Context, word string) (*LookupResult, error)
	Name() string
}
