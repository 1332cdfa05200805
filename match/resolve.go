package match

import (
	"strings"

	"github.com/poiesic/confero/core"
)

// resolveAttendee maps a free-form name to one attendee using a three-tier
// fallback. Each tier runs only when the previous one matched nothing, and
// the first hit of the winning tier is taken.
//
//	tier 1: exact match, first token as first name, rest as last name
//	tier 2: substring match against either name field
//	tier 3: first and last token matched independently (needs >= 2 tokens)
func resolveAttendee(attendees []*core.Attendee, name string) *core.Attendee {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return nil
	}
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return nil
	}

	// Tier 1: exact first/last split.
	first := tokens[0]
	last := strings.Join(tokens[1:], " ")
	for _, a := range attendees {
		if strings.ToLower(a.FirstName) == first && strings.ToLower(a.LastName) == last {
			return a
		}
	}

	// Tier 2: substring on either field.
	for _, a := range attendees {
		if strings.Contains(strings.ToLower(a.FirstName), query) ||
			strings.Contains(strings.ToLower(a.LastName), query) {
			return a
		}
	}

	// Tier 3: first and last tokens independently.
	if len(tokens) >= 2 {
		firstTok := tokens[0]
		lastTok := tokens[len(tokens)-1]
		for _, a := range attendees {
			if strings.Contains(strings.ToLower(a.FirstName), firstTok) &&
				strings.Contains(strings.ToLower(a.LastName), lastTok) {
				return a
			}
		}
	}

	return nil
}
