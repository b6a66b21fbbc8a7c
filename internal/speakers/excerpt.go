package speakers

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"seminar/internal/records"
)

// ExcerptWindowSeconds bounds the leading excerpt used for name suggestion.
// Self-introductions happen near the start, so a few minutes is enough.
const ExcerptWindowSeconds = 300

// Excerpt returns the leading portion of the transcript, formatted one
// utterance per line as "<label>: text". At least one utterance is always
// included so very short recordings still produce a usable prompt.
func Excerpt(utterances []records.Utterance) string {
	var b strings.Builder
	for i, u := range utterances {
		if i > 0 && u.Start > ExcerptWindowSeconds {
			break
		}
		fmt.Fprintf(&b, "%s: %s\n", u.Speaker, u.Text)
	}
	return b.String()
}

// DistinctLabels returns every speaker label that occurs anywhere in the
// transcript, in order of first appearance. Scanning the full transcript
// guards against the suggestion step omitting a label that only appears
// after the excerpt window.
func DistinctLabels(utterances []records.Utterance) []string {
	seen := make(map[string]struct{})
	labels := make([]string, 0, 8)
	for _, u := range utterances {
		if _, ok := seen[u.Speaker]; ok {
			continue
		}
		seen[u.Speaker] = struct{}{}
		labels = append(labels, u.Speaker)
	}
	return labels
}

// CanonicalMap builds the label to display-name mapping from the
// reviewer-visible rows: confirmed name, else suggested name, else the raw
// label itself.
func CanonicalMap(mappings []*records.SpeakerMapping) map[string]string {
	canonical := make(map[string]string, len(mappings))
	for _, m := range mappings {
		canonical[m.Label] = m.DisplayName()
	}
	return canonical
}

// RenderNamed substitutes "<label>:" occurrences in the transcript text with
// the canonical display names.
func RenderNamed(utterances []records.Utterance, names map[string]string) string {
	var b strings.Builder
	for _, u := range utterances {
		name, ok := names[u.Speaker]
		if !ok || name == "" {
			name = u.Speaker
		}
		fmt.Fprintf(&b, "%s: %s\n", name, u.Text)
	}
	return b.String()
}

// ParticipantLines collects each named participant's own utterances, keyed by
// display name. Unresolved ("?") and facilitator voices are excluded since
// reports exist only for actual participants.
func ParticipantLines(utterances []records.Utterance, names map[string]string) map[string]string {
	lines := make(map[string]*strings.Builder)
	order := make([]string, 0, len(names))
	for _, u := range utterances {
		name := names[u.Speaker]
		if name == "" || name == records.UnknownName || name == records.FacilitatorName || name == u.Speaker {
			continue
		}
		b, ok := lines[name]
		if !ok {
			b = &strings.Builder{}
			lines[name] = b
			order = append(order, name)
		}
		b.WriteString(u.Text)
		b.WriteString("\n")
	}
	out := make(map[string]string, len(order))
	for _, name := range order {
		out[name] = strings.TrimRight(lines[name].String(), "\n")
	}
	return out
}

var nameCaser = cases.Title(language.English, cases.NoLower)

// NormalizeName tidies a reviewer- or LLM-supplied name: trimmed, inner
// whitespace collapsed, and lowercase-only names title-cased. Mixed-case
// input is preserved so names like "McAdams" survive.
func NormalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" || name == records.UnknownName {
		return name
	}
	if strings.ToLower(name) == name {
		return nameCaser.String(name)
	}
	return name
}

// SortedNames returns the map's display names sorted for stable output.
func SortedNames(names map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
