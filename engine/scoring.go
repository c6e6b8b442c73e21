package engine

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
)

// ScoreRequest carries the interaction attributes a scorer sees.
type ScoreRequest struct {
	Notes    string          `json:"notes"`
	Type     InteractionType `json:"type"`
	Duration float64         `json:"duration"`
	Quality  Quality         `json:"quality"`
}

// Scorer turns interaction details into signed RXP.
type Scorer interface {
	Score(ctx context.Context, req ScoreRequest) (int, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, req ScoreRequest) (int, error)

func (f ScorerFunc) Score(ctx context.Context, req ScoreRequest) (int, error) { return f(ctx, req) }

// ErrScoreSign is returned when a score is negative for a non-negative interaction.
var ErrScoreSign = errors.New("negative rxp for non-negative interaction")

var typeMultipliers = map[InteractionType]float64{
	TypeText:    1,
	TypeCall:    1.5,
	TypeHangout: 2,
	TypeEvent:   2.5,
	TypeOther:   1,
}

// CalculateRXP is the deterministic local formula.
func CalculateRXP(t InteractionType, durationHours float64, q Quality) int {
	mult, ok := typeMultipliers[t]
	if !ok {
		mult = 1
	}
	base := 10 * mult
	if durationHours > 0 {
		base *= 1 + durationHours*0.3
	}
	if q == QualityPositive {
		base *= 1.5
	}
	if q == QualityNegative {
		base = -base * 0.5
	}
	return roundHalfUp(base)
}

// roundHalfUp rounds to the nearest integer with halves going toward
// positive infinity, so -7.5 becomes -7.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// LocalScorer scores with CalculateRXP and never fails.
type LocalScorer struct{}

func (LocalScorer) Score(_ context.Context, req ScoreRequest) (int, error) {
	return CalculateRXP(req.Type, req.Duration, req.Quality), nil
}

// FallbackScorer tries a remote scorer and falls back to another scorer on
// any failure. Errors from the primary are logged, never returned.
type FallbackScorer struct {
	primary  Scorer
	fallback Scorer
	timeout  time.Duration
	logger   *zap.Logger
}

// NewFallbackScorer wraps primary with the local formula as fallback. A nil
// primary makes the scorer purely local.
func NewFallbackScorer(primary Scorer, timeout time.Duration, logger *zap.Logger) *FallbackScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackScorer{primary: primary, fallback: LocalScorer{}, timeout: timeout, logger: logger}
}

func (f *FallbackScorer) Score(ctx context.Context, req ScoreRequest) (int, error) {
	if f.primary != nil {
		rxp, err := f.tryPrimary(ctx, req)
		if err == nil {
			return rxp, nil
		}
		f.logger.Warn("remote scoring failed, using local formula",
			zap.String("type", string(req.Type)),
			zap.String("quality", string(req.Quality)),
			zap.Error(err))
	}
	return f.fallback.Score(ctx, req)
}

func (f *FallbackScorer) tryPrimary(ctx context.Context, req ScoreRequest) (int, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	rxp, err := f.primary.Score(ctx, req)
	if err != nil {
		return 0, err
	}
	if rxp < 0 && req.Quality != QualityNegative {
		return 0, ErrScoreSign
	}
	return rxp, nil
}
