package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"wikihub/internal/models"
)

type WorkspaceRepo interface {
	List(ctx context.Context) ([]*models.Workspace, error)
	GetByID(ctx context.Context, id string) (*models.Workspace, error)
	Rename(ctx context.Context, id, name string) (*models.Workspace, error)
}

type workspaceRepo struct{ db *pgxpool.Pool }

func NewWorkspaceRepo(db *pgxpool.Pool) WorkspaceRepo { return &workspaceRepo{db: db} }

func (r *workspaceRepo) List(ctx context.Context) ([]*models.Workspace, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at, updated_at FROM workspaces ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*models.Workspace{}
	for rows.Next() {
		var w models.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

func (r *workspaceRepo) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	var w models.Workspace
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM workspaces WHERE id = $1`, id,
	).Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &w, nil
}

func (r *workspaceRepo) Rename(ctx context.Context, id, name string) (*models.Workspace, error) {
	var w models.Workspace
	err := r.db.QueryRow(ctx,
		`UPDATE workspaces SET name = $2, updated_at = NOW() WHERE id = $1
		 RETURNING id, name, created_at, updated_at`, id, name,
	).Scan(&w.ID, &w.Name, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &w, nil
}
