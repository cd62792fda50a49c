package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shift-crm/internal/storage"
)

func (s *Storage) GetSetting(ctx context.Context, tenantID, key string) (string, error) {
	const op = "storage.mysql.GetSetting"

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM crm_tenant_settings WHERE tenant_id = ? AND name = ?`, tenantID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: key=%s: %w", op, key, storage.ErrSettingNotFound)
		}
		return "", fmt.Errorf("%s: ошибка получения настройки %s: %w", op, key, err)
	}

	return value, nil
}

func (s *Storage) SetSetting(ctx context.Context, tenantID, key, value string) error {
	const op = "storage.mysql.SetSetting"

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crm_tenant_settings (tenant_id, name, value) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value)
	`, tenantID, key, value)
	if err != nil {
		return fmt.Errorf("%s: ошибка сохранения настройки %s: %w", op, key, err)
	}

	return nil
}
