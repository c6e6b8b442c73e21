package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/cppla/socialquest/engine"
)

type questReply struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Reward      *float64 `json:"reward"`
}

// QuestSuggester builds a personalized quest from the player's state. It
// implements engine.QuestSuggester.
type QuestSuggester struct {
	gen    Generator
	logger *zap.Logger
}

func NewQuestSuggester(gen Generator, logger *zap.Logger) *QuestSuggester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestSuggester{gen: gen, logger: logger}
}

func (q *QuestSuggester) SuggestQuest(ctx context.Context, s *engine.State) (engine.QuestSuggestion, error) {
	text, err := q.gen.Generate(ctx, questPrompt(s), questTemperature)
	if err != nil {
		return engine.QuestSuggestion{}, err
	}
	var reply questReply
	if err := ExtractJSON(text, &reply); err != nil {
		q.logger.Debug("unparseable quest reply", zap.String("reply", text))
		return engine.QuestSuggestion{}, err
	}
	if reply.Reward == nil {
		return engine.QuestSuggestion{}, engine.ErrInvalidSuggestion
	}
	reward, ok := roundModelValue(*reply.Reward)
	if !ok {
		return engine.QuestSuggestion{}, engine.ErrInvalidSuggestion
	}
	sug := engine.QuestSuggestion{
		Title:       reply.Title,
		Description: reply.Description,
		Reward:      reward,
	}
	if err := sug.Validate(); err != nil {
		return engine.QuestSuggestion{}, err
	}
	return sug, nil
}
