package workers

import (
	"context"

	"uav-logchat/flightdesk/internal/config"
)

type WorkersContainer struct {
	Sweeper *UploadSweeper
}

// InitWorkers starts the background workers enabled in cfg. They stop when ctx is done.
func InitWorkers(ctx context.Context, cfg *config.Config) *WorkersContainer {
	c := &WorkersContainer{}

	if cfg.Upload.SweepInterval > 0 && cfg.Upload.MaxAge > 0 {
		c.Sweeper = NewUploadSweeper(cfg.Upload.Dir, cfg.Upload.MaxAge)
		go c.Sweeper.Start(ctx, cfg.Upload.SweepInterval)
	}

	return c
}
