package mysql

import (
	"context"
	"fmt"

	"shift-crm/internal/storage"
)

func (s *Storage) ListModels(ctx context.Context, tenantID string) ([]storage.Model, error) {
	const op = "storage.mysql.ListModels"

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM crm_models WHERE tenant_id = ? ORDER BY name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения моделей: %w", op, err)
	}
	defer rows.Close()

	models := []storage.Model{}
	for rows.Next() {
		var m storage.Model
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки модели: %w", op, err)
		}
		models = append(models, m)
	}

	return models, rows.Err()
}

func (s *Storage) ListOperators(ctx context.Context, tenantID string) ([]storage.Operator, error) {
	const op = "storage.mysql.ListOperators"

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM crm_operators WHERE tenant_id = ? ORDER BY name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения операторов: %w", op, err)
	}
	defer rows.Close()

	operators := []storage.Operator{}
	for rows.Next() {
		var o storage.Operator
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки оператора: %w", op, err)
		}
		operators = append(operators, o)
	}

	return operators, rows.Err()
}

func (s *Storage) ListPairs(ctx context.Context, tenantID string) ([]storage.Pair, error) {
	const op = "storage.mysql.ListPairs"

	query := `
		SELECT p.id, p.name, pm.model_id
		FROM crm_pairs p
		LEFT JOIN crm_pair_members pm ON pm.tenant_id = p.tenant_id AND pm.pair_id = p.id
		WHERE p.tenant_id = ?
		ORDER BY p.name, pm.position`

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения пар: %w", op, err)
	}
	defer rows.Close()

	pairMap := make(map[string]*storage.Pair)
	var order []string

	for rows.Next() {
		var (
			id, name string
			memberID *string
		)
		if err := rows.Scan(&id, &name, &memberID); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки пары: %w", op, err)
		}

		p, ok := pairMap[id]
		if !ok {
			p = &storage.Pair{ID: id, Name: name, MemberIDs: []string{}}
			pairMap[id] = p
			order = append(order, id)
		}
		if memberID != nil {
			p.MemberIDs = append(p.MemberIDs, *memberID)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	pairs := make([]storage.Pair, 0, len(order))
	for _, id := range order {
		pairs = append(pairs, *pairMap[id])
	}

	return pairs, nil
}

func (s *Storage) ListResponsibles(ctx context.Context, tenantID string) ([]storage.Responsible, error) {
	const op = "storage.mysql.ListResponsibles"

	query := `
		SELECT r.id, r.name, rm.model_id
		FROM crm_responsibles r
		LEFT JOIN crm_responsible_models rm ON rm.tenant_id = r.tenant_id AND rm.responsible_id = r.id
		WHERE r.tenant_id = ?
		ORDER BY r.name, rm.model_id`

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения ответственных: %w", op, err)
	}
	defer rows.Close()

	respMap := make(map[string]*storage.Responsible)
	var order []string

	for rows.Next() {
		var (
			id, name string
			modelID  *string
		)
		if err := rows.Scan(&id, &name, &modelID); err != nil {
			return nil, fmt.Errorf("%s: ошибка сканирования строки ответственного: %w", op, err)
		}

		r, ok := respMap[id]
		if !ok {
			r = &storage.Responsible{ID: id, Name: name, ModelIDs: []string{}}
			respMap[id] = r
			order = append(order, id)
		}
		if modelID != nil {
			r.ModelIDs = append(r.ModelIDs, *modelID)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка при итерации по строкам: %w", op, err)
	}

	responsibles := make([]storage.Responsible, 0, len(order))
	for _, id := range order {
		responsibles = append(responsibles, *respMap[id])
	}

	return responsibles, nil
}
