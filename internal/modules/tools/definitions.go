package tools

// Definition describes one tool to a tool-calling model.
type Definition struct {
	Name        Kind           `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Definitions returns the schema of every tool in Kinds order.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        KindPlanRoute,
			Description: "Plan a complete route from an origin to multiple destinations. Long days are split automatically to fit the driving limits.",
			Parameters: object(map[string]any{
				"origin": str("Starting location (city, address, or coordinates)"),
				"destinations": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Destination names in the order given by the user",
				},
				"transport_mode": map[string]any{
					"type":        "string",
					"enum":        []string{"driving", "walking", "bicycling", "transit"},
					"description": "Preferred mode of transportation. Defaults to 'driving'.",
				},
				"constraints": preferencesSchema("Travel constraints and preferences", true),
				"date_constraints": map[string]any{
					"type":        "array",
					"description": "Fixed dates or reservations that must be respected",
					"items": object(map[string]any{
						"location":    str("Location for the constraint"),
						"start_date":  str("Start date (YYYY-MM-DD)"),
						"end_date":    str("End date (YYYY-MM-DD)"),
						"description": str("Description of the constraint"),
					}, "location"),
				},
			}, "origin", "destinations"),
		},
		{
			Name:        KindOptimizeRoute,
			Description: "Calculate and optimize a complete route with real-world distances and times. Validates every segment against the driving limits and splits long segments into manageable parts.",
			Parameters: object(map[string]any{
				"segments":         segmentsSchema("Route segments to calculate and optimize"),
				"user_preferences": preferencesSchema("Driving limits; the trip's stored preferences are used when omitted", false),
			}, "segments"),
		},
		{
			Name:        KindCalculateRoute,
			Description: "Calculate driving routes and validate them against the driving limits. Suggests split points for long segments without changing the route.",
			Parameters: object(map[string]any{
				"segments":         segmentsSchema("Route segments to calculate"),
				"user_preferences": preferencesSchema("Driving limits used for validation", false),
			}, "segments"),
		},
	}
}

func object(props map[string]any, required ...string) map[string]any {
	out := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func segmentsSchema(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": desc,
		"items": object(map[string]any{
			"origin":      str("Starting location (city, address, or coordinates)"),
			"destination": str("Ending location (city, address, or coordinates)"),
			"waypoints": map[string]any{
				"type":        "array",
				"description": "Optional intermediate stops",
				"items":       map[string]any{"type": "string"},
			},
		}, "origin", "destination"),
	}
}

func preferencesSchema(desc string, daytime bool) map[string]any {
	props := map[string]any{
		"max_daily_drive_hours": map[string]any{"type": "number", "description": "Maximum hours to drive in a single day"},
		"max_daily_distance_km": map[string]any{"type": "number", "description": "Maximum distance to drive in a single day (km)"},
		"avoid": map[string]any{
			"type":        "array",
			"description": "Things to avoid",
			"items":       map[string]any{"type": "string", "enum": []string{"tolls", "highways", "ferries", "unpaved"}},
		},
	}
	if daytime {
		props["daytime_only"] = map[string]any{"type": "boolean", "description": "Whether to drive only during daytime"}
	}
	out := object(props)
	out["description"] = desc
	return out
}
