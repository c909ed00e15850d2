// Package jobs wires the background schedules. The only job today is the
// pending-consultation sweep: bookings the doctor never accepted would
// otherwise sit pending forever with the patient's money captured.
package jobs

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"telecare-server/internal/consultation"
)

// StartSweeper schedules the overdue-pending sweep on the given cron spec
// (for example "@every 10m"). The returned cron is already started.
func StartSweeper(svc *consultation.Service, spec string, logger zerolog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		n, err := svc.ExpireOverduePending(time.Now())
		if err != nil {
			logger.Error().Err(err).Msg("pending consultation sweep failed")
			return
		}
		if n > 0 {
			logger.Info().Int("cancelled", n).Msg("swept overdue pending consultations")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
