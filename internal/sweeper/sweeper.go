// Package sweeper runs the periodic maintenance jobs. Today that is the
// invite expiry sweep; the sweep itself is a conditional bulk update, so an
// overlapping or restarted run can never double-apply.
package sweeper

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taskflowhq/taskflow-api/internal/services"
)

// Sweeper owns the cron scheduler.
type Sweeper struct {
	cron    *cron.Cron
	invites *services.InviteService
	log     *zap.Logger
}

// New creates a Sweeper. Jobs are registered by Start.
func New(invites *services.InviteService, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		cron:    cron.New(),
		invites: invites,
		log:     log,
	}
}

// Start registers the invite expiry sweep with the given cron spec and kicks
// off the scheduler. Expiry still holds without the sweep running: redemption
// checks expires_at itself, the sweep only makes the stored status catch up.
func (s *Sweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.sweepInvites); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("sweeper started", zap.String("invite_sweep_spec", spec))
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweepInvites() {
	if _, err := s.invites.ExpireOverdue(); err != nil {
		s.log.Error("invite expiry sweep failed", zap.Error(err))
	}
}
