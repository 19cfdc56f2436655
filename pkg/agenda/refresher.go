package agenda

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const refreshTimeout = 30 * time.Second

// Refresher rebuilds the feed on a cron schedule so the dashboard picks up
// remote calendar changes without a client request.
type Refresher struct {
	cron    *cron.Cron
	service *Service
}

func NewRefresher(service *Service, schedule string) (*Refresher, error) {
	c := cron.New(cron.WithLocation(service.loc()))
	r := &Refresher{cron: c, service: service}
	if _, err := c.AddFunc(schedule, r.run); err != nil {
		return nil, fmt.Errorf("invalid agenda refresh schedule %q: %w", schedule, err)
	}
	return r, nil
}

func (r *Refresher) Start() {
	log.Infof("Starting agenda refresher")
	r.cron.Start()
}

// Stop waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if _, err := r.service.Refresh(ctx); err != nil {
		log.Errorf("scheduled agenda refresh failed: %v", err)
	}
}
