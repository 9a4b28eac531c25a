// Package answer turns one free-form Russian question into exactly one
// numeric answer string.
package answer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/vidstat/vidstat/internal/nl2sql"
	"github.com/vidstat/vidstat/internal/nlquery"
	"github.com/vidstat/vidstat/internal/observability"
	"github.com/vidstat/vidstat/internal/stats"
)

var (
	// ErrEmptyQuestion marks input that is blank after trimming.
	ErrEmptyQuestion = errors.New("empty question")
	// ErrTranslation wraps failures of the generative translator.
	ErrTranslation = errors.New("sql translation failed")
	// ErrQueryRejected marks a candidate query that is not read-only.
	ErrQueryRejected = errors.New("query rejected")
	// ErrExecution wraps database failures while running the query.
	ErrExecution = errors.New("query execution failed")
)

// Executor runs one read-only single-scalar query.
type Executor interface {
	ScalarQuery(ctx context.Context, query string) (stats.Scalar, error)
}

// Service answers questions about the video statistics tables. Recognized
// question archetypes are rendered directly from templates; everything else
// goes through the generative translator and the repair pass.
type Service struct {
	translator nl2sql.Translator
	executor   Executor
	logger     *slog.Logger
}

func NewService(translator nl2sql.Translator, executor Executor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		translator: translator,
		executor:   executor,
		logger:     logger,
	}
}

// Answer resolves the question to one numeric string. A NULL or absent
// result is the answer "0"; fractional results are truncated toward zero.
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	started := time.Now()
	answer, err := s.answer(ctx, question)
	observability.ObserveQuestion(outcomeFor(err), time.Since(started))
	return answer, err
}

func (s *Service) answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	ents := nlquery.Extract(question)

	query, shape, matched := nlquery.Match(ents)
	if matched {
		observability.IncrementTemplateMatch(string(shape))
		s.logger.Debug("question matched template", "shape", shape)
	} else {
		candidate, err := s.translator.Translate(ctx, question)
		if err != nil {
			observability.IncrementTranslation("error")
			return "", fmt.Errorf("%w: %v", ErrTranslation, err)
		}
		observability.IncrementTranslation("ok")

		repaired, kinds := nlquery.Repair(ents, candidate)
		for _, kind := range kinds {
			observability.IncrementRepair(kind)
		}
		if len(kinds) > 0 {
			s.logger.Debug("repaired generated query", "kinds", kinds)
		}
		query = repaired
	}

	if !isReadOnly(query) {
		return "", fmt.Errorf("%w: not a read-only statement", ErrQueryRejected)
	}

	scalar, err := s.executor.ScalarQuery(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExecution, err)
	}

	return FormatScalar(scalar), nil
}

// FormatScalar renders the final answer. Invalid scalars read as zero and
// fractional values are truncated, never rounded.
func FormatScalar(scalar stats.Scalar) string {
	if !scalar.Valid {
		return "0"
	}
	return strconv.FormatInt(int64(scalar.Value), 10)
}

func isReadOnly(query string) bool {
	head := strings.ToLower(strings.TrimSpace(query))
	return strings.HasPrefix(head, "select") || strings.HasPrefix(head, "with")
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptyQuestion):
		return "empty"
	case errors.Is(err, ErrTranslation):
		return "translation_error"
	case errors.Is(err, ErrQueryRejected):
		return "rejected"
	case errors.Is(err, ErrExecution):
		return "execution_error"
	default:
		return "error"
	}
}
