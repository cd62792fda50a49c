package shift

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"shift-crm/internal/service/earnings"
	"shift-crm/internal/storage"
)

// ErrInvalidTransition: действие недопустимо в текущем статусе смены.
var ErrInvalidTransition = errors.New("недопустимый переход статуса смены")

// ErrInvalidShift: не хватает обязательных полей новой смены.
var ErrInvalidShift = errors.New("некорректные данные смены")

type ShiftStorage interface {
	ListShifts(ctx context.Context, tenantID string, filter storage.ShiftFilter) ([]storage.Shift, error)
	GetShift(ctx context.Context, tenantID, id string) (*storage.Shift, error)
	SaveShift(ctx context.Context, tenantID string, shift storage.Shift) error
	DeleteShift(ctx context.Context, tenantID, id string) error
	GetEntries(ctx context.Context, tenantID, shiftID string) (storage.Entries, error)
	SaveEntries(ctx context.Context, tenantID, shiftID string, entries storage.Entries) error
}

type Service struct {
	storage ShiftStorage
	calc    earnings.Calculator
	now     func() time.Time
}

func NewService(storage ShiftStorage, calc earnings.Calculator) *Service {
	return &Service{storage: storage, calc: calc, now: time.Now}
}

// WithClock подменяет часы (для тестов).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

type NewShift struct {
	ModelID     string `json:"model_id"`
	ModelName   string `json:"model_name"`
	Responsible string `json:"responsible"`
	Operator    string `json:"operator"`
	Date        string `json:"date"`
}

// View: смена для списка и карточки: флаг расхождения и страница статуса.
type View struct {
	storage.Shift
	Mismatch bool             `json:"mismatch"`
	Page     string           `json:"page"`
	Entries  *storage.Entries `json:"entries,omitempty"`
}

func toView(s storage.Shift) View {
	return View{
		Shift:    s,
		Mismatch: earnings.Mismatch(s.Check, s.CheckCalculated),
		Page:     PageFor(s.Status),
	}
}

func (s *Service) Create(ctx context.Context, tenantID string, in NewShift) (*storage.Shift, error) {
	const op = "service.shift.Create"

	in.ModelID = strings.TrimSpace(in.ModelID)
	if in.ModelID == "" {
		return nil, fmt.Errorf("%s: не указана модель: %w", op, ErrInvalidShift)
	}
	if _, err := time.Parse(storage.DateLayout, in.Date); err != nil {
		return nil, fmt.Errorf("%s: дата %q: %w", op, in.Date, ErrInvalidShift)
	}

	shift := storage.Shift{
		ID:          uuid.NewString(),
		ModelID:     in.ModelID,
		ModelName:   in.ModelName,
		Responsible: in.Responsible,
		Operator:    in.Operator,
		Date:        in.Date,
		Status:      storage.StatusPending,
	}

	if err := s.storage.SaveShift(ctx, tenantID, shift); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &shift, nil
}

// List возвращает смены с заново выставленными номерами.
func (s *Service) List(ctx context.Context, tenantID string, filter storage.ShiftFilter) ([]View, error) {
	const op = "service.shift.List"

	shifts, err := s.storage.ListShifts(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	storage.Renumber(shifts)

	views := make([]View, 0, len(shifts))
	for _, sh := range shifts {
		views = append(views, toView(sh))
	}

	return views, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (*View, error) {
	const op = "service.shift.Get"

	sh, err := s.storage.GetShift(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries, err := s.storage.GetEntries(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	v := toView(*sh)
	v.Entries = &entries

	return &v, nil
}

// load читает смену и проверяет, что она в ожидаемом статусе.
func (s *Service) load(ctx context.Context, op, tenantID, id, want string) (*storage.Shift, error) {
	sh, err := s.storage.GetShift(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if sh.Status != want {
		return nil, fmt.Errorf("%s: смена id=%s в статусе %q, ожидался %q: %w", op, id, sh.Status, want, ErrInvalidTransition)
	}

	return sh, nil
}

func (s *Service) timestamp() *string {
	ts := s.now().Format(storage.TimestampLayout)
	return &ts
}

// Start: Ожидает → В работе, фиксирует время начала. Чек и бонусы не трогает.
func (s *Service) Start(ctx context.Context, tenantID, id string) (*storage.Shift, error) {
	const op = "service.shift.Start"

	sh, err := s.load(ctx, op, tenantID, id, storage.StatusPending)
	if err != nil {
		return nil, err
	}

	sh.Status = storage.StatusActive
	sh.Start = s.timestamp()

	if err := s.storage.SaveShift(ctx, tenantID, *sh); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sh, nil
}

// RecordEntries сохраняет токены и бонусы работающей смены.
func (s *Service) RecordEntries(ctx context.Context, tenantID, id string, entries storage.Entries) error {
	const op = "service.shift.RecordEntries"

	if _, err := s.load(ctx, op, tenantID, id, storage.StatusActive); err != nil {
		return err
	}

	if err := s.storage.SaveEntries(ctx, tenantID, id, earnings.NormalizeEntries(entries)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Complete: В работе → Завершена. Чек считается из текущих записей смены.
func (s *Service) Complete(ctx context.Context, tenantID, id string) (*storage.Shift, error) {
	const op = "service.shift.Complete"

	sh, err := s.load(ctx, op, tenantID, id, storage.StatusActive)
	if err != nil {
		return nil, err
	}

	entries, err := s.storage.GetEntries(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	totals := s.calc.Complete(entries)

	sh.Status = storage.StatusCompleted
	sh.Check = &totals.Check
	sh.CheckCalculated = totals.CheckCalculated
	sh.Bonuses = &totals.BonusesText
	sh.End = s.timestamp()

	if err := s.storage.SaveShift(ctx, tenantID, *sh); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sh, nil
}

// Correction: правка завершённой смены. Nil-поля не меняются.
type Correction struct {
	Check   *string          `json:"check"`
	Entries *storage.Entries `json:"entries"`
}

// Reconcile правит завершённую смену: чек оператора и записи сайтов.
// Расчётный чек и бонусы пересчитываются, статус остаётся прежним.
func (s *Service) Reconcile(ctx context.Context, tenantID, id string, c Correction) (*storage.Shift, error) {
	const op = "service.shift.Reconcile"

	sh, err := s.load(ctx, op, tenantID, id, storage.StatusCompleted)
	if err != nil {
		return nil, err
	}

	var entries storage.Entries
	if c.Entries != nil {
		entries = earnings.NormalizeEntries(*c.Entries)
		if err := s.storage.SaveEntries(ctx, tenantID, id, entries); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		entries, err = s.storage.GetEntries(ctx, tenantID, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	totals := s.calc.Complete(entries)
	sh.CheckCalculated = totals.CheckCalculated
	sh.Bonuses = &totals.BonusesText

	if c.Check != nil {
		check := strings.TrimSpace(*c.Check)
		sh.Check = &check
	}

	if err := s.storage.SaveShift(ctx, tenantID, *sh); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sh, nil
}

// Delete: явное удаление оператором. Удалить можно только неначатую смену.
func (s *Service) Delete(ctx context.Context, tenantID, id string) error {
	const op = "service.shift.Delete"

	if _, err := s.load(ctx, op, tenantID, id, storage.StatusPending); err != nil {
		return err
	}

	if err := s.storage.DeleteShift(ctx, tenantID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Страницы интерфейса для каждого статуса: открытие смены не на своей странице
// перенаправляет на нужную.
const (
	PagePending   = "pending"
	PageActive    = "active"
	PageCompleted = "completed"
)

func PageFor(status string) string {
	switch status {
	case storage.StatusActive:
		return PageActive
	case storage.StatusCompleted:
		return PageCompleted
	default:
		return PagePending
	}
}
