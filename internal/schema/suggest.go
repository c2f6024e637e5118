package schema

import "dynconf/internal/match"

const maxSuggestions = 3

func suggest(name string, known []string) []string {
	return match.Suggest(name, known, maxSuggestions).Names()
}
