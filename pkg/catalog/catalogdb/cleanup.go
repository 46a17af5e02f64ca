package catalogdb

import (
	"context"

	"github.com/goesarchive/goescat/pkg/catalogmodel"
)

func (s *PostgresStore) CreateCleanupRule(ctx context.Context, r *catalogmodel.CleanupRule) error {
	return s.db.QueryRowContext(ctx, `
		INSERT INTO cleanup_rules (id, rule_type, value, protect_collections, is_active)
		VALUES ($1,$2,$3,$4,$5) RETURNING created_at`,
		r.ID, r.RuleType, r.Value, r.ProtectCollections, r.IsActive).Scan(&r.CreatedAt)
}

func (s *PostgresStore) ListActiveCleanupRules(ctx context.Context) ([]*catalogmodel.CleanupRule, error) {
	return s.listCleanupRules(ctx, `WHERE is_active`)
}

func (s *PostgresStore) ListCleanupRules(ctx context.Context) ([]*catalogmodel.CleanupRule, error) {
	return s.listCleanupRules(ctx, ``)
}

func (s *PostgresStore) listCleanupRules(ctx context.Context, where string) ([]*catalogmodel.CleanupRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rule_type, value, protect_collections, is_active, created_at FROM cleanup_rules `+where+` ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*catalogmodel.CleanupRule
	for rows.Next() {
		r := &catalogmodel.CleanupRule{}
		if err := rows.Scan(&r.ID, &r.RuleType, &r.Value, &r.ProtectCollections, &r.IsActive, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteCleanupRule(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cleanup_rules WHERE id=$1`, id)
	return err
}
