package emergencyaccess

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recordgate/recordgate/internal/platform/db"
)

type grantRepoPG struct{ pool *pgxpool.Pool }

func NewGrantRepoPG(pool *pgxpool.Pool) GrantRepository { return &grantRepoPG{pool: pool} }

func (r *grantRepoPG) conn(ctx context.Context) db.Queryer {
	if q := db.QueryerFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

func (r *grantRepoPG) Append(ctx context.Context, g *Grant) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO emergency_grant (id, record_id, grantor, reason, justification, acknowledged, state, requested_at, granted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		g.ID, g.RecordID, g.Grantor, g.Reason, g.Justification, g.Acknowledged,
		string(g.State), g.RequestedAt, g.GrantedAt)
	if err != nil {
		return fmt.Errorf("insert emergency grant: %w", err)
	}
	return nil
}

func (r *grantRepoPG) ListByRecord(ctx context.Context, recordID uuid.UUID) ([]*Grant, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, record_id, grantor, reason, justification, acknowledged, state, requested_at, granted_at
		FROM emergency_grant WHERE record_id = $1 ORDER BY requested_at`, recordID)
	if err != nil {
		return nil, fmt.Errorf("list emergency grants: %w", err)
	}
	defer rows.Close()

	var grants []*Grant
	for rows.Next() {
		var g Grant
		if err := rows.Scan(&g.ID, &g.RecordID, &g.Grantor, &g.Reason, &g.Justification,
			&g.Acknowledged, &g.State, &g.RequestedAt, &g.GrantedAt); err != nil {
			return nil, fmt.Errorf("scan emergency grant: %w", err)
		}
		grants = append(grants, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emergency grants: %w", err)
	}
	return grants, nil
}
