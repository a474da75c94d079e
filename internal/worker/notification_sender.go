package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/platewise/platewise/internal/domain/model"
)

// StorefrontFacade exposes the subset of application functionality required
// by the sender.
type StorefrontFacade interface {
	NotificationsForSending(ctx context.Context, limit int) ([]model.Notification, error)
	DeliverNotification(ctx context.Context, n model.Notification) error
	MarkNotificationSent(ctx context.Context, id int64) error
	MarkNotificationFailed(ctx context.Context, id int64) error
}

// maxAttempts bounds delivery retries; the claim query stops returning rows
// at this count, so a failed second attempt parks the row as FAILED.
const maxAttempts = 2

// NotificationSender drains the notification outbox through a worker pool.
type NotificationSender struct {
	facade       StorefrontFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Notification
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewNotificationSender constructs the outbox worker pool.
func NewNotificationSender(facade StorefrontFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *NotificationSender {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &NotificationSender{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Notification, batchSize*workers),
	}
}

// Start launches background processing.
func (s *NotificationSender) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx)
	}

	s.wg.Add(1)
	go s.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (s *NotificationSender) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *NotificationSender) dispatch(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.jobs)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetchAndDispatch(ctx)
		}
	}
}

func (s *NotificationSender) fetchAndDispatch(ctx context.Context) {
	batch, err := s.facade.NotificationsForSending(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("fetch notifications for sending failed", slog.String("error", err.Error()))
		return
	}
	for _, n := range batch {
		select {
		case <-ctx.Done():
			return
		case s.jobs <- n:
		}
	}
}

func (s *NotificationSender) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-s.jobs:
			if !ok {
				return
			}
			s.handle(ctx, n)
		}
	}
}

func (s *NotificationSender) handle(ctx context.Context, n model.Notification) {
	if err := s.facade.DeliverNotification(ctx, n); err != nil {
		s.logger.Error("notification delivery failed",
			slog.Int64("notification", n.ID),
			slog.Int("attempt", n.Attempts),
			slog.String("error", err.Error()))
		if n.Attempts >= maxAttempts {
			if err := s.facade.MarkNotificationFailed(ctx, n.ID); err != nil {
				s.logger.Error("mark notification failed errored",
					slog.Int64("notification", n.ID), slog.String("error", err.Error()))
			}
		}
		return
	}

	if err := s.facade.MarkNotificationSent(ctx, n.ID); err != nil {
		s.logger.Error("mark notification sent errored",
			slog.Int64("notification", n.ID), slog.String("error", err.Error()))
	}
}
