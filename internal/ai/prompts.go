package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"roadtrip/internal/modules/routeplan"
)

// narrationPrompt renders plan as the JSON document the narrator instruction
// describes. The model only sees figures already in the plan.
func narrationPrompt(plan *routeplan.RoutePlan) (string, error) {
	if plan == nil {
		return "", fmt.Errorf("narrate: nil plan")
	}
	payload, err := json.Marshal(narrationFor(plan))
	if err != nil {
		return "", fmt.Errorf("narrate: encode plan: %w", err)
	}
	return fmt.Sprintf("Trip plan:\n%s", payload), nil
}

func intentPrompt(message string) string {
	return fmt.Sprintf("User Message: %s", message)
}

// parseRouteIntent decodes a model answer shaped like routeIntent. Blank
// places are dropped; ErrNoRoute is returned when no origin or no
// destination is left.
func parseRouteIntent(text string) (string, []string, error) {
	var out routeIntent
	if err := json.Unmarshal([]byte(cleanJSONString(text)), &out); err != nil {
		return "", nil, fmt.Errorf("route intent: failed to parse JSON response: %w", err)
	}

	origin := strings.TrimSpace(out.Origin)
	dests := make([]string, 0, len(out.Destinations))
	for _, d := range out.Destinations {
		if d = strings.TrimSpace(d); d != "" {
			dests = append(dests, d)
		}
	}
	if origin == "" || len(dests) == 0 {
		return "", nil, ErrNoRoute
	}
	return origin, dests, nil
}

func narrationFor(plan *routeplan.RoutePlan) narrationInput {
	in := narrationInput{
		Success:  plan.Success,
		Warnings: plan.Warnings,
		Totals: narrationTotals{
			DistanceKm:    math.Round(plan.Summary.TotalDistanceKm*10) / 10,
			DurationHours: math.Round(plan.Summary.TotalDurationHours*10) / 10,
			Days:          len(plan.Segments),
		},
	}
	for i, s := range plan.Segments {
		in.Days = append(in.Days, narrationDay{
			Day:      i + 1,
			From:     s.Origin,
			To:       s.Destination,
			Distance: s.DistanceText,
			Duration: s.DurationText,
			Estimate: s.Estimated,
			Issues:   s.Issues,
		})
	}
	for _, r := range routeplan.Recommend(plan) {
		in.Advice = append(in.Advice, r.Message)
	}
	return in
}

const narratorInstruction = `Role: You are a friendly road trip planning assistant.
You receive a trip plan as JSON. Each entry in "days" is one day of driving.

RULES:
1. Describe the trip day by day: where each day starts and ends, with its distance and duration.
2. Use ONLY the figures in the JSON. Never invent distances, times or places.
3. Mention every warning and piece of advice briefly, in plain words.
4. If "estimate" is true for a day, say the figures are approximate.
5. If "success" is false, apologise and ask the user to check the place names.
6. Keep the reply under 200 words. Markdown lists are allowed.`

const intentInstruction = `Role: You extract driving routes from travel messages.
Return the place the trip starts from and every place the user wants to drive to, in travel order.

RULES:
- Use place names as written by the user, without dates, durations or activities.
- Do not add places the user did not mention.
- If the message does not describe a route, return an empty origin and no destinations.

Output JSON Schema:
{
  "origin": "string",
  "destinations": ["string"]
}`

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
