// Package templates provides the built-in prompt templates for LLM calls and
// the placeholder substitution they share. Stored overrides take precedence
// over the built-ins so prompts can be tuned without a rebuild.
package templates

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"seminar/internal/records"
)

// Template names addressable from the CLI and the pipeline.
const (
	SpeakerNames       = "speaker_names"
	GroupFeedback      = "group_feedback"
	IndividualFeedback = "individual_feedback"
)

const speakerNamesBody = `You are helping identify speakers in a transcribed student discussion.
Below is an excerpt of the discussion with diarization labels in place of names.
Participants usually introduce themselves or address each other by name.

Excerpt:
{{excerpt}}

Known participants for this section:
{{participants}}

Return a JSON object mapping each diarization label to the speaker's name.
Use "?" when the excerpt gives no usable evidence for a label. Use
"Facilitator" for the course facilitator. Respond with JSON only.`

const groupFeedbackBody = `You are a teaching assistant reviewing a recorded group discussion.
Write concise, encouraging feedback for the whole group. Comment on the
quality of argumentation, participation balance, and use of course concepts.

Course: {{course}}
Section: {{section}}

Transcript:
{{transcript}}`

const individualFeedbackBody = `You are a teaching assistant reviewing a recorded group discussion.
Write concise, encouraging feedback addressed to {{participant}} about their
individual contribution. Ground every observation in what they actually said.

Course: {{course}}
Section: {{section}}

Transcript:
{{transcript}}`

var builtins = map[string]string{
	SpeakerNames:       speakerNamesBody,
	GroupFeedback:      groupFeedbackBody,
	IndividualFeedback: individualFeedbackBody,
}

// Names returns the addressable template names in stable order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether name addresses a built-in template.
func Known(name string) bool {
	_, ok := builtins[strings.TrimSpace(name)]
	return ok
}

// Lookup returns the template body for name, preferring a stored override.
// The catalog may be nil, in which case only built-ins are consulted.
func Lookup(ctx context.Context, catalog *records.Catalog, name string) (string, error) {
	name = strings.TrimSpace(name)
	body, ok := builtins[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	if catalog != nil {
		override, err := catalog.TemplateByName(ctx, name)
		if err != nil {
			return "", err
		}
		if override != nil && strings.TrimSpace(override.Body) != "" {
			return override.Body, nil
		}
	}
	return body, nil
}

// Render substitutes {{placeholder}} occurrences in body with values from
// vars. Placeholders without a value are left untouched so a malformed
// override stays visible in the rendered prompt.
func Render(body string, vars map[string]string) string {
	if len(vars) == 0 {
		return body
	}
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(body)
}
