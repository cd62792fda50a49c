// Package sweep удаляет неначатые смены, дата которых уже прошла.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"shift-crm/internal/storage"
)

type Task struct {
	expirer storage.Expirer
	log     *slog.Logger
	cron    *cron.Cron
	now     func() time.Time
	timeout time.Duration
}

func NewTask(expirer storage.Expirer, log *slog.Logger) *Task {
	return &Task{
		expirer: expirer,
		log:     log,
		cron:    cron.New(),
		now:     time.Now,
		timeout: 5 * time.Minute,
	}
}

// WithClock подменяет часы (для тестов).
func (t *Task) WithClock(now func() time.Time) *Task {
	t.now = now
	return t
}

// RunOnce удаляет смены в статусе Ожидает с датой раньше сегодняшней и без отметки начала.
func (t *Task) RunOnce(ctx context.Context) ([]storage.ShiftRef, error) {
	const op = "service.sweep.RunOnce"

	before := t.now().Format(storage.DateLayout)

	refs, err := t.expirer.DeleteExpiredShifts(ctx, before)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	t.log.Info("expired shifts removed",
		slog.String("op", op),
		slog.String("before", before),
		slog.Int("count", len(refs)),
	)

	return refs, nil
}

// Start регистрирует задачу по расписанию spec (5 полей cron) и запускает планировщик.
func (t *Task) Start(spec string) error {
	const op = "service.sweep.Start"

	_, err := t.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()

		if _, err := t.RunOnce(ctx); err != nil {
			t.log.Error("sweep failed", slog.String("op", op), slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("%s: расписание %q: %w", op, spec, err)
	}

	t.cron.Start()
	t.log.Info("sweep scheduled", slog.String("spec", spec))

	return nil
}

// Stop дожидается завершения запущенной задачи.
func (t *Task) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}
