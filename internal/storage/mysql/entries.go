package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"shift-crm/internal/storage"
)

type entryKey struct {
	Kind string
	Site string
}

type entryRow struct {
	entryKey
	Value string
}

// entriesDiff: изменения между сохранёнными и новыми записями смены.
type entriesDiff struct {
	Upserts []entryRow
	Deletes []entryKey
}

func flattenEntries(e storage.Entries) map[entryKey]string {
	flat := make(map[entryKey]string, len(e.Tokens)+len(e.Bonuses))
	for site, v := range e.Tokens {
		flat[entryKey{Kind: storage.EntryTokens, Site: site}] = v
	}
	for site, v := range e.Bonuses {
		flat[entryKey{Kind: storage.EntryBonuses, Site: site}] = v
	}
	return flat
}

// diffEntries сравнивает наборы записей; неизменённые строки не трогаются.
func diffEntries(current, next storage.Entries) entriesDiff {
	cur := flattenEntries(current)
	nxt := flattenEntries(next)

	var d entriesDiff
	for k, v := range nxt {
		if old, ok := cur[k]; !ok || old != v {
			d.Upserts = append(d.Upserts, entryRow{entryKey: k, Value: v})
		}
	}
	for k := range cur {
		if _, ok := nxt[k]; !ok {
			d.Deletes = append(d.Deletes, k)
		}
	}

	sort.Slice(d.Upserts, func(i, j int) bool { return keyLess(d.Upserts[i].entryKey, d.Upserts[j].entryKey) })
	sort.Slice(d.Deletes, func(i, j int) bool { return keyLess(d.Deletes[i], d.Deletes[j]) })

	return d
}

func keyLess(a, b entryKey) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Site < b.Site
}

func (s *Storage) GetEntries(ctx context.Context, tenantID, shiftID string) (storage.Entries, error) {
	const op = "storage.mysql.GetEntries"

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, site, value FROM crm_shift_entries WHERE tenant_id = ? AND shift_id = ?`, tenantID, shiftID)
	if err != nil {
		return storage.Entries{}, fmt.Errorf("%s: ошибка получения записей смены id=%s: %w", op, shiftID, err)
	}
	defer rows.Close()

	return scanEntries(rows, op)
}

func scanEntries(rows *sql.Rows, op string) (storage.Entries, error) {
	entries := storage.Entries{Tokens: map[string]string{}, Bonuses: map[string]string{}}

	for rows.Next() {
		var kind, site, value string
		if err := rows.Scan(&kind, &site, &value); err != nil {
			return storage.Entries{}, fmt.Errorf("%s: ошибка сканирования записи: %w", op, err)
		}

		switch kind {
		case storage.EntryTokens:
			entries.Tokens[site] = value
		case storage.EntryBonuses:
			entries.Bonuses[site] = value
		}
	}

	if err := rows.Err(); err != nil {
		return storage.Entries{}, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return entries, nil
}

// SaveEntries применяет к записям смены только разницу в одной транзакции.
func (s *Storage) SaveEntries(ctx context.Context, tenantID, shiftID string, entries storage.Entries) error {
	const op = "storage.mysql.SaveEntries"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT kind, site, value FROM crm_shift_entries WHERE tenant_id = ? AND shift_id = ? FOR UPDATE`,
		tenantID, shiftID)
	if err != nil {
		return fmt.Errorf("%s: ошибка чтения текущих записей смены id=%s: %w", op, shiftID, err)
	}
	current, err := scanEntries(rows, op)
	rows.Close()
	if err != nil {
		return err
	}

	d := diffEntries(current, entries)
	if len(d.Upserts) == 0 && len(d.Deletes) == 0 {
		return nil
	}

	if len(d.Upserts) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO crm_shift_entries (tenant_id, shift_id, kind, site, value)
			VALUES (?, ?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE value = VALUES(value)
		`)
		if err != nil {
			return fmt.Errorf("%s: ошибка подготовки вставки: %w", op, err)
		}
		defer stmt.Close()

		for _, row := range d.Upserts {
			if _, err := stmt.ExecContext(ctx, tenantID, shiftID, row.Kind, row.Site, row.Value); err != nil {
				return fmt.Errorf("%s: ошибка записи %s/%s смены id=%s: %w", op, row.Kind, row.Site, shiftID, err)
			}
		}
	}

	if len(d.Deletes) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`DELETE FROM crm_shift_entries WHERE tenant_id = ? AND shift_id = ? AND kind = ? AND site = ?`)
		if err != nil {
			return fmt.Errorf("%s: ошибка подготовки удаления: %w", op, err)
		}
		defer stmt.Close()

		for _, k := range d.Deletes {
			if _, err := stmt.ExecContext(ctx, tenantID, shiftID, k.Kind, k.Site); err != nil {
				return fmt.Errorf("%s: ошибка удаления записи %s/%s смены id=%s: %w", op, k.Kind, k.Site, shiftID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}
