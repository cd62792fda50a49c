package storage

import (
	"sort"
	"strings"
)

// Статусы смены. Отменена зарезервирована: ни один переход её не выставляет.
const (
	StatusPending   = "Ожидает"
	StatusActive    = "В работе"
	StatusCompleted = "Завершена"
	StatusCancelled = "Отменена"
)

// Формат даты смены и отметок начала/конца.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04"
)

type Shift struct {
	ID              string  `json:"id"`
	Number          int     `json:"number"`
	ModelID         string  `json:"model_id"`
	ModelName       string  `json:"model_name"`
	Responsible     string  `json:"responsible"`
	Operator        string  `json:"operator"`
	Date            string  `json:"date"`
	Status          string  `json:"status"`
	Check           *string `json:"check"`
	CheckCalculated *string `json:"check_calculated"`
	Bonuses         *string `json:"bonuses"`
	Start           *string `json:"start"`
	End             *string `json:"end"`
}

// Entries: записи смены по сайтам: токены (в работе) и бонусы в долларах.
type Entries struct {
	Tokens  map[string]string `json:"tokens"`
	Bonuses map[string]string `json:"bonuses"`
}

// Виды записей в таблице shift_entries.
const (
	EntryTokens  = "tokens"
	EntryBonuses = "bonuses"
)

type ShiftFilter struct {
	From    string
	To      string
	Status  string
	ModelID string
}

// ShiftRef адресует смену конкретного арендатора.
type ShiftRef struct {
	TenantID string `json:"tenant_id"`
	ID       string `json:"id"`
}

// Matches проверяет смену по фильтру; даты сравниваются как строки YYYY-MM-DD, границы включены.
func (f ShiftFilter) Matches(s Shift) bool {
	if f.From != "" && s.Date < f.From {
		return false
	}
	if f.To != "" && s.Date > f.To {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	if f.ModelID != "" && s.ModelID != f.ModelID {
		return false
	}
	return true
}

// Renumber заново выставляет порядковые номера 1..n. Номер не является идентификатором.
func Renumber(shifts []Shift) {
	sort.SliceStable(shifts, func(i, j int) bool {
		if shifts[i].Date != shifts[j].Date {
			return shifts[i].Date < shifts[j].Date
		}
		return deref(shifts[i].Start) < deref(shifts[j].Start)
	})

	for i := range shifts {
		shifts[i].Number = i + 1
	}
}

// IsPairKey: составной ключ пары вида "id1-id2[-id3]".
func IsPairKey(modelID string) bool {
	return strings.Contains(modelID, "-")
}

// PairMembers разбирает составной ключ пары на id моделей.
func PairMembers(modelID string) []string {
	var members []string
	for _, id := range strings.Split(modelID, "-") {
		if id = strings.TrimSpace(id); id != "" {
			members = append(members, id)
		}
	}
	return members
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
