package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shift-crm/internal/storage"
)

const shiftColumns = `id, model_id, model_name, responsible, operator, shift_date, status,
	check_amount, check_calculated, bonuses, started_at, ended_at`

// buildShiftFilters формирует WHERE-часть запроса смен арендатора
func buildShiftFilters(tenantID string, f storage.ShiftFilter) (string, []interface{}) {
	conditions := []string{"tenant_id = ?"}
	args := []interface{}{tenantID}

	if f.From != "" {
		conditions = append(conditions, "shift_date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		conditions = append(conditions, "shift_date <= ?")
		args = append(args, f.To)
	}
	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}
	if f.ModelID != "" {
		conditions = append(conditions, "model_id = ?")
		args = append(args, f.ModelID)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanShift(row rowScanner) (storage.Shift, error) {
	var (
		s                                      storage.Shift
		check, calculated, bonuses, start, end sql.NullString
	)

	err := row.Scan(&s.ID, &s.ModelID, &s.ModelName, &s.Responsible, &s.Operator, &s.Date, &s.Status,
		&check, &calculated, &bonuses, &start, &end)
	if err != nil {
		return storage.Shift{}, err
	}

	s.Check = nullToPtr(check)
	s.CheckCalculated = nullToPtr(calculated)
	s.Bonuses = nullToPtr(bonuses)
	s.Start = nullToPtr(start)
	s.End = nullToPtr(end)

	return s, nil
}

func (s *Storage) ListShifts(ctx context.Context, tenantID string, filter storage.ShiftFilter) ([]storage.Shift, error) {
	const op = "storage.mysql.ListShifts"

	where, args := buildShiftFilters(tenantID, filter)
	query := fmt.Sprintf(`SELECT %s FROM crm_shifts %s ORDER BY shift_date, started_at`, shiftColumns, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения смен: %w", op, err)
	}
	defer rows.Close()

	shifts := []storage.Shift{}
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки смены: %w", op, err)
		}
		shifts = append(shifts, shift)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	return shifts, nil
}

func (s *Storage) GetShift(ctx context.Context, tenantID, id string) (*storage.Shift, error) {
	const op = "storage.mysql.GetShift"

	query := fmt.Sprintf(`SELECT %s FROM crm_shifts WHERE tenant_id = ? AND id = ?`, shiftColumns)

	shift, err := scanShift(s.db.QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: id=%s: %w", op, id, storage.ErrShiftNotFound)
		}
		return nil, fmt.Errorf("%s: выполнение запроса завершилось ошибкой: %w", op, err)
	}

	return &shift, nil
}

// SaveShift перезаписывает строку целиком: последняя запись побеждает.
func (s *Storage) SaveShift(ctx context.Context, tenantID string, shift storage.Shift) error {
	const op = "storage.mysql.SaveShift"

	stmt := `
		INSERT INTO crm_shifts (id, tenant_id, model_id, model_name, responsible, operator, shift_date, status,
			check_amount, check_calculated, bonuses, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			model_id = VALUES(model_id),
			model_name = VALUES(model_name),
			responsible = VALUES(responsible),
			operator = VALUES(operator),
			shift_date = VALUES(shift_date),
			status = VALUES(status),
			check_amount = VALUES(check_amount),
			check_calculated = VALUES(check_calculated),
			bonuses = VALUES(bonuses),
			started_at = VALUES(started_at),
			ended_at = VALUES(ended_at)
	`

	_, err := s.db.ExecContext(ctx, stmt, shift.ID, tenantID, shift.ModelID, shift.ModelName, shift.Responsible,
		shift.Operator, shift.Date, shift.Status, ptrToNull(shift.Check), ptrToNull(shift.CheckCalculated),
		ptrToNull(shift.Bonuses), ptrToNull(shift.Start), ptrToNull(shift.End))
	if err != nil {
		return fmt.Errorf("%s: ошибка сохранения смены id=%s: %w", op, shift.ID, err)
	}

	return nil
}

func (s *Storage) DeleteShift(ctx context.Context, tenantID, id string) error {
	const op = "storage.mysql.DeleteShift"

	res, err := s.db.ExecContext(ctx, `DELETE FROM crm_shifts WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return fmt.Errorf("%s: ошибка удаления смены id=%s: %w", op, id, err)
	}

	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("%s: id=%s: %w", op, id, storage.ErrShiftNotFound)
	}

	return nil
}

// DeleteExpiredShifts удаляет неначатые смены с датой раньше before и возвращает их адреса.
func (s *Storage) DeleteExpiredShifts(ctx context.Context, before string) ([]storage.ShiftRef, error) {
	const op = "storage.mysql.DeleteExpiredShifts"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT tenant_id, id FROM crm_shifts WHERE status = ? AND shift_date < ? AND started_at IS NULL FOR UPDATE`,
		storage.StatusPending, before)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка выборки просроченных смен: %w", op, err)
	}

	var refs []storage.ShiftRef
	for rows.Next() {
		var ref storage.ShiftRef
		if err := rows.Scan(&ref.TenantID, &ref.ID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		refs = append(refs, ref)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM crm_shifts WHERE tenant_id = ? AND id = ?`)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка подготовки запроса: %w", op, err)
	}
	defer stmt.Close()

	for _, ref := range refs {
		if _, err := stmt.ExecContext(ctx, ref.TenantID, ref.ID); err != nil {
			return nil, fmt.Errorf("%s: ошибка удаления смены id=%s: %w", op, ref.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return refs, nil
}

func nullToPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func ptrToNull(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
