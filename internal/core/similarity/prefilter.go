package similarity

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agenthands/storyline/internal/core/model"
)

// minSharedTokens is how many long words a candidate and an existing story
// must share before the pair is worth a classification call.
const minSharedTokens = 2

// Prefilter narrows the existing corpus to the stories worth an expensive
// semantic check against the candidate. An existing story passes if it
// shares at least two long words with the candidate's narrative or carries
// the same persona. Near-duplicates with no shared long words are a known
// false-negative risk, accepted to bound the text shipped to the classifier.
func Prefilter(candidate model.CandidateStory, existing []model.ExistingStory) []model.ExistingStory {
	candTokens := narrativeTokens(candidate.Narrative)

	var relevant []model.ExistingStory
	for _, story := range existing {
		if strings.EqualFold(story.Persona, candidate.Persona) {
			relevant = append(relevant, story)
			continue
		}

		shared := 0
		for tok := range narrativeTokens(story.Narrative) {
			if _, ok := candTokens[tok]; ok {
				shared++
				if shared >= minSharedTokens {
					break
				}
			}
		}
		if shared >= minSharedTokens {
			relevant = append(relevant, story)
		}
	}
	return relevant
}

// narrativeTokens splits a narrative into lowercase words longer than 3
// characters, discarding punctuation. Unlike the quick scorer this keeps
// stop words: the prefilter only measures raw word overlap.
func narrativeTokens(text string) map[string]struct{} {
	normalized := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(normalized) {
		if len(tok) > 3 {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

// Rank orders existing stories by their best QuickScore against any of the
// given narratives, most relevant first. Ties keep corpus order, so the
// ordering is deterministic. Used to put the most relevant corpus text at
// the top of the classification prompt.
func Rank(narratives []string, existing []model.ExistingStory) []model.ExistingStory {
	if len(existing) < 2 {
		return existing
	}

	scores := make([]int, len(existing))
	for i, story := range existing {
		best := 0
		for _, n := range narratives {
			if s := QuickScore(n, story.Narrative); s > best {
				best = s
			}
		}
		scores[i] = best
	}

	ranked := make([]model.ExistingStory, len(existing))
	order := make([]int, len(existing))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	for i, idx := range order {
		ranked[i] = existing[idx]
	}
	return ranked
}
