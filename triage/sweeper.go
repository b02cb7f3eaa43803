package triage

import (
	"context"
	"time"

	"civicreport-be/config"
	"civicreport-be/models"

	"github.com/rs/zerolog"
)

// Sweeper escalates open issues that have stalled past the configured age.
// It runs once at start and then on a fixed interval until its context is
// cancelled. A failed tick is logged and never prevents the next one.
type Sweeper struct {
	issues  IssueStore
	history HistoryStore
	cfg     config.Settings
	log     zerolog.Logger
	now     func() time.Time
}

func NewSweeper(issues IssueStore, history HistoryStore, cfg config.Settings, logger zerolog.Logger) *Sweeper {
	return &Sweeper{issues: issues, history: history, cfg: cfg, log: logger, now: time.Now}
}

// Start blocks until ctx is cancelled, so callers run it in its own
// goroutine owned by the process lifecycle.
func (s *Sweeper) Start(ctx context.Context) {
	s.log.Info().Dur("interval", s.cfg.SweepInterval).Int("escalationDays", s.cfg.EscalationDays).
		Msg("escalation sweeper started")

	if err := s.Sweep(ctx); err != nil {
		s.log.Error().Err(err).Msg("escalation sweep failed")
	}

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("escalation sweeper stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.log.Error().Err(err).Msg("escalation sweep failed")
			}
		}
	}
}

// Sweep runs one tick. Each issue's escalation is a single conditional store
// write guarded by the level cap, so a tick interrupted midway leaves the
// processed issues correctly escalated and the rest untouched for next time.
func (s *Sweeper) Sweep(ctx context.Context) error {
	cutoff := s.now().Add(-s.cfg.EscalationAge())

	stale, err := s.issues.FindStale(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, issue := range stale {
		if issue.EscalationLevel >= s.cfg.MaxEscalationLevel {
			continue
		}

		updated, err := s.issues.Escalate(ctx, issue.ID, s.cfg.MaxEscalationLevel)
		if err != nil {
			// Level guard no longer holds or the issue vanished; either
			// way it is not ours to escalate this tick.
			s.log.Warn().Err(err).Str("issue", issue.ID.Hex()).Msg("skipping escalation")
			continue
		}

		// Null actor marks the transition as system-driven in the audit trail.
		if err := s.history.Append(ctx, models.StatusHistory{
			IssueID:   issue.ID,
			Status:    models.Pending,
			HandledBy: nil,
			ChangedBy: nil,
		}); err != nil {
			s.log.Error().Err(err).Str("issue", issue.ID.Hex()).Msg("failed to append status history")
		}

		s.log.Info().Str("issue", issue.ID.Hex()).Int("level", updated.EscalationLevel).
			Msg("issue escalated")
		// TODO: notify the higher-level admins once a delivery channel exists.
	}
	return nil
}
