package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hostcodes/quizwiz/internal/auth/store"
)

// HousekeepingService periodically clears expired verification codes and
// reset grants. Both are already treated as absent once past expiry, so this
// is hygiene rather than correctness: it keeps stale secrets out of the
// database.
type HousekeepingService struct {
	store    store.Store
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewHousekeepingService(st store.Store, interval time.Duration) *HousekeepingService {
	return &HousekeepingService{
		store:    st,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background sweep loop. It runs one sweep immediately so
// a restart cleans up right away.
func (s *HousekeepingService) Start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sweep()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for the in-flight sweep to finish.
func (s *HousekeepingService) Stop() {
	close(s.stop)
	<-s.done
}

func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()

	otps, err := s.store.Users().DeleteExpiredOTPs(ctx, now)
	if err != nil {
		slog.Error("housekeeping: purge expired otps", slog.Any("error", err))
	}

	resets, err := s.store.Users().DeleteExpiredResetChallenges(ctx, now)
	if err != nil {
		slog.Error("housekeeping: purge expired reset challenges", slog.Any("error", err))
	}

	if otps > 0 || resets > 0 {
		slog.Info("housekeeping: purged expired challenges",
			slog.Int64("otps", otps),
			slog.Int64("resets", resets),
		)
	}
}
