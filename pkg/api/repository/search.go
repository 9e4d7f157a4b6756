package repository

import (
	"slices"
	"strings"
)

// SearchTerms splits free text into lower-cased terms
func SearchTerms(search string) []string {
	return strings.Fields(strings.ToLower(search))
}

// MatchesSearch reports whether any term occurs in any of the fields, ignoring case. An empty
// search matches everything.
func MatchesSearch(search string, fields ...string) bool {
	terms := SearchTerms(search)
	if len(terms) == 0 {
		return true
	}

	lowered := make([]string, len(fields))
	for i, f := range fields {
		lowered[i] = strings.ToLower(f)
	}

	return slices.ContainsFunc(terms, func(term string) bool {
		return slices.ContainsFunc(lowered, func(field string) bool {
			return strings.Contains(field, term)
		})
	})
}

// Paginate returns the window of items described by page
func Paginate[T any](items []T, page Page) []T {
	if page.Offset >= len(items) {
		return []T{}
	}

	end := len(items)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}

	return items[page.Offset:end]
}

// UniqueIDs drops empty and repeated ids, keeping first-seen order
func UniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if len(id) == 0 || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return unique
}
