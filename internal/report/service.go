package report

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/store"
)

// Source is the read side of the store the reports are built from.
type Source interface {
	ListEntries(f store.EntryFilter) ([]store.DailyEntry, error)
	CountActiveUsers() (int, error)
}

// Service fetches entries for a scope and runs them through the engine.
// Fetch failures are logged and surfaced alongside an empty result, so a
// view can keep rendering.
type Service struct {
	src    Source
	log    *zap.Logger
	labels LabelMode
}

func NewService(src Source, log *zap.Logger, labels LabelMode) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if labels == "" {
		labels = LabelsLive
	}
	return &Service{src: src, log: log, labels: labels}
}

func (s *Service) fetch(scope Scope) ([]store.DailyEntry, Options, error) {
	opts := Options{Labels: s.labels}

	total, err := s.src.CountActiveUsers()
	if err != nil {
		s.logFailure("count users", scope, err)
		return nil, opts, fmt.Errorf("count users: %w", err)
	}
	opts.TotalUsers = total

	entries, err := s.src.ListEntries(scope.Filter())
	if err != nil {
		s.logFailure("list entries", scope, err)
		return nil, opts, fmt.Errorf("list entries for %s: %w", scope, err)
	}
	return entries, opts, nil
}

func (s *Service) logFailure(op string, scope Scope, err error) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("scope", scope.String()),
		zap.Error(err),
	}
	if scope.UserID != nil {
		fields = append(fields, zap.Int64("user_id", *scope.UserID))
	}
	s.log.Error("report data fetch failed", fields...)
}

// Aggregate returns the engine result for scope.
func (s *Service) Aggregate(scope Scope) (*Result, error) {
	entries, opts, err := s.fetch(scope)
	if err != nil {
		return Empty(scope, opts.TotalUsers), err
	}
	res := Aggregate(entries, scope, opts)
	s.log.Debug("report aggregated",
		zap.String("scope", scope.String()),
		zap.Int("entries", len(entries)),
		zap.Int("active_users", res.ActiveUsers),
		zap.Int("minutes", res.Team.Minutes),
	)
	return res, nil
}

// Summary returns the display projection for scope.
func (s *Service) Summary(scope Scope) (*Summary, error) {
	res, err := s.Aggregate(scope)
	return BuildSummary(res), err
}

// Sheets returns the export projection for scope.
func (s *Service) Sheets(scope Scope) (Sheets, error) {
	entries, opts, err := s.fetch(scope)
	if err != nil {
		return Sheets{}, err
	}
	return BuildSheets(entries, scope, opts), nil
}
