package ai

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/cppla/socialquest/engine"
)

// Analysis is the model's verdict on an interaction.
type Analysis struct {
	RXP       int    `json:"rxp"`
	Reasoning string `json:"reasoning"`
}

// maxModelValue bounds any score or reward taken from a model reply.
const maxModelValue = 10000

// roundModelValue rounds v half up, rejecting values that are not finite or
// exceed maxModelValue in magnitude.
func roundModelValue(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxModelValue {
		return 0, false
	}
	return int(math.Floor(v + 0.5)), true
}

type analysisReply struct {
	RXP       *float64 `json:"rxp"`
	Reasoning string   `json:"reasoning"`
}

// Scorer asks the model for an RXP value. It implements engine.Scorer.
type Scorer struct {
	gen    Generator
	logger *zap.Logger
}

func NewScorer(gen Generator, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{gen: gen, logger: logger}
}

// Analyze returns the model's score and reasoning for req.
func (s *Scorer) Analyze(ctx context.Context, req engine.ScoreRequest) (Analysis, error) {
	text, err := s.gen.Generate(ctx, scorePrompt(req), scoreTemperature)
	if err != nil {
		return Analysis{}, err
	}
	var reply analysisReply
	if err := ExtractJSON(text, &reply); err != nil || reply.RXP == nil {
		s.logger.Debug("unparseable score reply", zap.String("reply", text))
		return Analysis{}, ErrMalformedReply
	}
	rxp, ok := roundModelValue(*reply.RXP)
	if !ok {
		s.logger.Debug("score out of range", zap.Float64("rxp", *reply.RXP))
		return Analysis{}, ErrMalformedReply
	}
	out := Analysis{RXP: rxp, Reasoning: reply.Reasoning}
	if out.Reasoning == "" {
		out.Reasoning = "Interaction analyzed"
	}
	return out, nil
}

func (s *Scorer) Score(ctx context.Context, req engine.ScoreRequest) (int, error) {
	a, err := s.Analyze(ctx, req)
	if err != nil {
		return 0, err
	}
	return a.RXP, nil
}
