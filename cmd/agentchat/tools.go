// Copyright (c) Microsoft. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	af "github.com/agentloop/agentloop-go/agentloop"
)

type weatherArgs struct {
	Location string `json:"location" jsonschema:"description=City name or location,required"`
	Unit     string `json:"unit"     jsonschema:"description=Temperature unit,enum=celsius|fahrenheit"`
}

// weatherTool returns simulated weather.
func weatherTool() af.Tool {
	return af.NewTypedTool("get_weather",
		"Get the current weather for a location.",
		func(ctx context.Context, args weatherArgs) (any, error) {
			unit := args.Unit
			if unit == "" {
				unit = "fahrenheit"
			}
			temp := 72
			if unit == "celsius" {
				temp = 22
			}
			return map[string]any{
				"location":    args.Location,
				"temperature": temp,
				"unit":        unit,
				"condition":   "sunny",
			}, nil
		},
	)
}

// timeTool reports the current time, optionally in an IANA time zone.
func timeTool() af.Tool {
	return af.NewSchemaTool("get_time",
		"Get the current time.",
		json.RawMessage(`{"type":"object","properties":{"timezone":{"type":"string","description":"IANA time zone, e.g. Europe/Paris"}}}`),
		func(ctx context.Context, args any) (any, error) {
			now := time.Now()
			m, _ := args.(map[string]any)
			if tz, _ := m["timezone"].(string); tz != "" {
				loc, err := time.LoadLocation(tz)
				if err != nil {
					return nil, fmt.Errorf("unknown time zone %q", tz)
				}
				now = now.In(loc)
			}
			return now.Format(time.RFC3339), nil
		},
	)
}
