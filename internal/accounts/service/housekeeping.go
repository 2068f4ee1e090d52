package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/memo/internal/accounts/domain"
	"github.com/aussiebroadwan/memo/internal/accounts/files"
	"github.com/aussiebroadwan/memo/internal/accounts/store"
	"github.com/aussiebroadwan/memo/pkg/otpx"
	"github.com/aussiebroadwan/memo/pkg/slogx"
)

// HousekeepingService periodically removes files nothing points at any
// more: enrollment images never consumed by a second factor login and
// profile pictures whose meta row is gone.
type HousekeepingService struct {
	Store    store.Store
	Files    *files.Store
	OTP      *otpx.Engine
	Logger   *slog.Logger
	Interval time.Duration

	// MFAImageTTL is how long an unused enrollment image is kept. Zero
	// keeps them forever.
	MFAImageTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(
	st store.Store,
	fs *files.Store,
	otp *otpx.Engine,
	logger *slog.Logger,
	interval, mfaImageTTL time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:       st,
		Files:       fs,
		OTP:         otp,
		Logger:      logger,
		Interval:    interval,
		MFAImageTTL: mfaImageTTL,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Cleanup runs one pass. Each step is independent; a failure in one does
// not stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	ctx, logger := slogx.StartRun(ctx, s.Logger)
	logger.Info("starting housekeeping cleanup")

	now := s.now()

	images := 0
	if s.MFAImageTTL > 0 {
		n, err := s.OTP.PruneImages(now.Add(-s.MFAImageTTL))
		if err != nil {
			logger.Error("failed to prune enrollment images", "error", err)
		}
		images = n
	}

	pics, err := s.pruneUserpics(ctx, now)
	if err != nil {
		logger.Error("failed to prune userpics", "error", err)
	}

	logger.Info("housekeeping cleanup completed",
		"enrollment_images", images,
		"userpics", pics,
	)
}

// pruneUserpics deletes picture files no account references. Files newer
// than one interval are skipped so an upload whose meta row is not yet
// committed survives.
func (s *HousekeepingService) pruneUserpics(ctx context.Context, now time.Time) (int, error) {
	entries, err := s.Files.List(files.DirUserpics)
	if err != nil || len(entries) == 0 {
		return 0, err
	}

	names, err := s.Store.AccountMeta().Values(ctx, domain.MetaUserpic)
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]struct{}, len(names))
	for _, name := range names {
		referenced[name] = struct{}{}
	}

	cutoff := now.Add(-s.Interval)
	deleted := 0
	for _, e := range entries {
		if _, ok := referenced[e.Name]; ok || e.ModTime.After(cutoff) {
			continue
		}
		if err := s.Files.Delete(files.DirUserpics, e.Name); err != nil {
			slogx.FromContext(ctx).Warn("failed to delete userpic", "file", e.Name, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}
