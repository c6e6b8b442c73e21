package ai

import (
	"fmt"
	"strings"

	"github.com/cppla/socialquest/engine"
)

const (
	scoreTemperature float32 = 0.7
	questTemperature float32 = 0.8
)

func scorePrompt(req engine.ScoreRequest) string {
	return fmt.Sprintf(`Analyze this social interaction and determine appropriate Relationship XP (RXP) points.

Interaction Details:
- Type: %s
- Duration: %g hours
- Quality: %s
- Notes: %s

Based on the interaction quality, type, and duration, assign RXP points.
Consider:
- Positive interactions: 20-100 RXP
- Neutral interactions: 10-40 RXP
- Negative interactions: -50 to -5 RXP (must be negative)
- Duration multiplier: longer interactions get more points
- Type matters: hangouts and events are worth more than texts

Return ONLY a JSON object with this exact format:
{"rxp": <number>, "reasoning": "<brief explanation>"}

Be strict but fair. Don't over-reward simple interactions.`, req.Type, req.Duration, req.Quality, req.Notes)
}

func questPrompt(s *engine.State) string {
	names := make(map[string]string, len(s.Allies))
	for _, a := range s.Allies {
		names[a.ID] = a.Name
	}

	recent := s.Interactions
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	lines := make([]string, 0, len(recent))
	for _, it := range recent {
		name := names[it.AllyID]
		if name == "" {
			name = "Unknown"
		}
		typ, quality := string(it.Type), string(it.Quality)
		if typ == "" {
			typ = "interaction"
		}
		if quality == "" {
			quality = "neutral"
		}
		lines = append(lines, fmt.Sprintf("%s: %s (%s)", name, typ, quality))
	}

	allies := s.Allies
	if len(allies) > 5 {
		allies = allies[:5]
	}
	info := make([]string, 0, len(allies))
	for _, a := range allies {
		name := a.Name
		if name == "" {
			name = "Ally"
		}
		hobbies := "None"
		if len(a.Hobbies) > 0 {
			hobbies = strings.Join(a.Hobbies, ", ")
		}
		info = append(info, fmt.Sprintf("%s: Bond Level %d, Hobbies: %s", name, engine.BondLevel(a.RXP), hobbies))
	}

	return fmt.Sprintf(`Based on this social gaming data, suggest a personalized quest for the player.

Player Stats:
- Total Allies: %d
- Total RXP: %d
- Recent Interactions: %s

Allies Info:
%s

Generate a creative, personalized quest that would help the player improve their social life.
It could be about:
- Reconnecting with someone
- Deepening a specific relationship
- Trying something new with an ally
- Supporting someone who might need it

Return ONLY a JSON object with this exact format:
{"title": "<quest title>", "description": "<detailed quest description>", "reward": <number between 50-300>}

Make it specific, actionable, and engaging.`, len(s.Allies), s.TotalRXP, strings.Join(lines, ", "), strings.Join(info, "\n"))
}
