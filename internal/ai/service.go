package ai

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Service runs analysis strategies in order and keeps the first valid result.
type Service struct {
	strategies []Strategy
	logger     *slog.Logger
	active     atomic.Value
}

// NewService creates an orchestrator over the given strategies, tried in order.
func NewService(logger *slog.Logger, strategies ...Strategy) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{strategies: strategies, logger: logger}
	s.active.Store(EngineNone)
	return s
}

// Analyze returns a nil result when there is nothing to analyze or every engine failed.
// Engine errors are logged and recorded in the report, never returned.
func (s *Service) Analyze(ctx context.Context, input AnalysisInput) Report {
	report := Report{}
	if len(input.Subscriptions) == 0 {
		return report
	}

	for _, strategy := range s.strategies {
		if ctx.Err() != nil {
			break
		}

		result, attempt := strategy.Attempt(ctx, input)
		report.Attempts = append(report.Attempts, attempt)

		if attempt.Err != nil {
			if !attempt.Skipped {
				s.logger.Warn("analysis engine failed",
					slog.String("engine", string(attempt.Engine)),
					slog.String("error", attempt.Err.Error()),
				)
			}
			continue
		}

		report.Result = result
		report.Engine = strategy.Engine()
		s.active.Store(report.Engine)
		return report
	}

	return report
}

// ActiveEngine is the engine that produced the last accepted result.
func (s *Service) ActiveEngine() Engine {
	engine, _ := s.active.Load().(Engine)
	return engine
}
