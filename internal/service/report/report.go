// Package report собирает финансовые отчёты по завершённым сменам.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"shift-crm/internal/service/earnings"
	"shift-crm/internal/storage"
)

var (
	ErrInvalidQuery        = errors.New("некорректный период отчёта")
	ErrInvalidRate         = errors.New("курс должен быть больше нуля")
	ErrResponsibleNotFound = errors.New("ответственный не найден")
)

type ReportStorage interface {
	ListShifts(ctx context.Context, tenantID string, filter storage.ShiftFilter) ([]storage.Shift, error)
	ListModels(ctx context.Context, tenantID string) ([]storage.Model, error)
	ListPairs(ctx context.Context, tenantID string) ([]storage.Pair, error)
	ListResponsibles(ctx context.Context, tenantID string) ([]storage.Responsible, error)
	GetSetting(ctx context.Context, tenantID, key string) (string, error)
	SetSetting(ctx context.Context, tenantID, key, value string) error
}

type Service struct {
	storage     ReportStorage
	calc        earnings.Calculator
	defaultRate float64
}

func NewService(storage ReportStorage, calc earnings.Calculator, defaultRate float64) *Service {
	return &Service{storage: storage, calc: calc, defaultRate: defaultRate}
}

// Query: период [From, To] включительно и, при необходимости, набор моделей.
// Пустой ModelIDs означает все модели.
type Query struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	ModelIDs []string `json:"model_ids"`
}

type ModelEarnings struct {
	ModelID   string  `json:"model_id"`
	ModelName string  `json:"model_name"`
	Shifts    int     `json:"shifts"`
	Solo      float64 `json:"solo"`
	Pair      float64 `json:"pair"`
	PairShare float64 `json:"pair_share"`
	Total     float64 `json:"total"`
	Salary    float64 `json:"salary"`
}

type Report struct {
	From         string          `json:"from"`
	To           string          `json:"to"`
	ExchangeRate float64         `json:"exchange_rate"`
	Models       []ModelEarnings `json:"models"`
	TotalSolo    float64         `json:"total_solo"`
	TotalPair    float64         `json:"total_pair"`
	Total        float64         `json:"total"`
	TotalSalary  float64         `json:"total_salary"`
}

func (q Query) validate() error {
	for _, d := range []string{q.From, q.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(storage.DateLayout, d); err != nil {
			return fmt.Errorf("дата %q: %w", d, ErrInvalidQuery)
		}
	}
	if q.From != "" && q.To != "" && q.From > q.To {
		return fmt.Errorf("from %s позже to %s: %w", q.From, q.To, ErrInvalidQuery)
	}
	return nil
}

// Financial: отчёт по моделям за период.
func (s *Service) Financial(ctx context.Context, tenantID string, q Query) (*Report, error) {
	const op = "service.report.Financial"

	if err := q.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rep, err := s.build(ctx, tenantID, q, len(q.ModelIDs) > 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rep, nil
}

// ForResponsible: тот же отчёт, ограниченный моделями ответственного.
func (s *Service) ForResponsible(ctx context.Context, tenantID, responsibleID, from, to string) (*Report, error) {
	const op = "service.report.ForResponsible"

	q := Query{From: from, To: to}
	if err := q.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	responsibles, err := s.storage.ListResponsibles(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения ответственных: %w", op, err)
	}

	var found *storage.Responsible
	for i := range responsibles {
		if responsibles[i].ID == responsibleID {
			found = &responsibles[i]
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%s: id=%s: %w", op, responsibleID, ErrResponsibleNotFound)
	}

	q.ModelIDs = found.ModelIDs

	rep, err := s.build(ctx, tenantID, q, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rep, nil
}

func (s *Service) build(ctx context.Context, tenantID string, q Query, restrict bool) (*Report, error) {
	var (
		shifts []storage.Shift
		models []storage.Model
		pairs  []storage.Pair
		rate   float64
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		shifts, err = s.storage.ListShifts(gCtx, tenantID, storage.ShiftFilter{
			From:   q.From,
			To:     q.To,
			Status: storage.StatusCompleted,
		})
		if err != nil {
			return fmt.Errorf("shifts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		models, err = s.storage.ListModels(gCtx, tenantID)
		if err != nil {
			return fmt.Errorf("models: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		pairs, err = s.storage.ListPairs(gCtx, tenantID)
		if err != nil {
			return fmt.Errorf("pairs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rate, err = s.ExchangeRate(gCtx, tenantID)
		if err != nil {
			return fmt.Errorf("exchange rate: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := newAggregator(s.calc, rate, pairs)
	for _, m := range models {
		agg.name(m.ID, m.Name)
	}
	if restrict {
		agg.restrictTo(q.ModelIDs)
	}
	for _, sh := range shifts {
		agg.add(sh)
	}

	rep := agg.report()
	rep.From = q.From
	rep.To = q.To

	return rep, nil
}

// ExchangeRate: курс арендатора; если не задан или испорчен, берётся курс из конфигурации.
func (s *Service) ExchangeRate(ctx context.Context, tenantID string) (float64, error) {
	const op = "service.report.ExchangeRate"

	v, err := s.storage.GetSetting(ctx, tenantID, storage.SettingExchangeRate)
	if errors.Is(err, storage.ErrSettingNotFound) {
		return s.defaultRate, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	rate := earnings.ParseAmount(v)
	if rate <= 0 {
		return s.defaultRate, nil
	}

	return rate, nil
}

func (s *Service) SetExchangeRate(ctx context.Context, tenantID string, rate float64) error {
	const op = "service.report.SetExchangeRate"

	if rate <= 0 {
		return fmt.Errorf("%s: %v: %w", op, rate, ErrInvalidRate)
	}

	if err := s.storage.SetSetting(ctx, tenantID, storage.SettingExchangeRate, earnings.FormatAmount(rate)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// aggregator раскладывает чеки смен по моделям.
// Парная выплата учитывается один раз на ключ (дата, чек): и в итоге модели, и в общем итоге.
type aggregator struct {
	calc    earnings.Calculator
	rate    float64
	members map[string][]string
	names   map[string]string
	allowed map[string]bool
	models  map[string]*ModelEarnings
	seen    map[string]map[string]bool
	global  map[string]bool
	pairSum float64
}

func newAggregator(calc earnings.Calculator, rate float64, pairs []storage.Pair) *aggregator {
	members := make(map[string][]string, len(pairs))
	for _, p := range pairs {
		members[p.ID] = p.Members()
	}

	return &aggregator{
		calc:    calc,
		rate:    rate,
		members: members,
		names:   make(map[string]string),
		models:  make(map[string]*ModelEarnings),
		seen:    make(map[string]map[string]bool),
		global:  make(map[string]bool),
	}
}

func (a *aggregator) name(id, name string) {
	a.names[id] = name
}

func (a *aggregator) restrictTo(ids []string) {
	a.allowed = make(map[string]bool, len(ids))
	for _, id := range ids {
		a.allowed[id] = true
	}
}

func (a *aggregator) model(id, fallbackName string) *ModelEarnings {
	m, ok := a.models[id]
	if !ok {
		name := a.names[id]
		if name == "" {
			name = fallbackName
		}
		m = &ModelEarnings{ModelID: id, ModelName: name}
		a.models[id] = m
	}
	return m
}

func (a *aggregator) wanted(id string) bool {
	return a.allowed == nil || a.allowed[id]
}

func (a *aggregator) add(sh storage.Shift) {
	if sh.Check == nil {
		return
	}
	amount := earnings.ParseAmount(*sh.Check)

	if !storage.IsPairKey(sh.ModelID) {
		if !a.wanted(sh.ModelID) {
			return
		}
		m := a.model(sh.ModelID, sh.ModelName)
		m.Shifts++
		m.Solo += amount
		return
	}

	members, ok := a.members[sh.ModelID]
	if !ok || len(members) == 0 {
		members = storage.PairMembers(sh.ModelID)
	}
	if len(members) == 0 {
		return
	}

	key := sh.Date + "|" + strings.TrimSpace(*sh.Check)
	share := amount / float64(len(members))
	counted := false

	for _, id := range members {
		if !a.wanted(id) {
			continue
		}
		counted = true

		if a.seen[id] == nil {
			a.seen[id] = make(map[string]bool)
		}
		if a.seen[id][key] {
			continue
		}
		a.seen[id][key] = true

		m := a.model(id, "")
		m.Shifts++
		m.Pair += amount
		m.PairShare += share
	}

	if counted && !a.global[key] {
		a.global[key] = true
		a.pairSum += amount
	}
}

func (a *aggregator) report() *Report {
	rep := &Report{
		ExchangeRate: a.rate,
		Models:       make([]ModelEarnings, 0, len(a.models)),
	}

	for _, m := range a.models {
		m.Total = earnings.Round2(m.Solo + m.Pair)
		m.Salary = earnings.Round2(a.calc.Salary(m.Solo, m.Pair, a.rate))
		m.Solo = earnings.Round2(m.Solo)
		m.Pair = earnings.Round2(m.Pair)
		m.PairShare = earnings.Round2(m.PairShare)

		rep.TotalSolo += m.Solo
		rep.TotalSalary += m.Salary
		rep.Models = append(rep.Models, *m)
	}

	sort.Slice(rep.Models, func(i, j int) bool {
		if rep.Models[i].ModelName != rep.Models[j].ModelName {
			return rep.Models[i].ModelName < rep.Models[j].ModelName
		}
		return rep.Models[i].ModelID < rep.Models[j].ModelID
	})

	rep.TotalSolo = earnings.Round2(rep.TotalSolo)
	rep.TotalPair = earnings.Round2(a.pairSum)
	rep.Total = earnings.Round2(rep.TotalSolo + rep.TotalPair)
	rep.TotalSalary = earnings.Round2(rep.TotalSalary)

	return rep
}
