package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"wikihub/internal/models"
)

type CommentRepo interface {
	ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

type commentRepo struct{ db *pgxpool.Pool }

func NewCommentRepo(db *pgxpool.Pool) CommentRepo { return &commentRepo{db: db} }

const commentColumns = `id::text, content, author, article_id::text, user_id::text, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (*models.Comment, error) {
	var c models.Comment
	if err := row.Scan(&c.ID, &c.Content, &c.Author, &c.ArticleID, &c.UserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepo) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE article_id = $1 ORDER BY created_at ASC`, articleID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	defer rows.Close()

	list := []*models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	c, err := scanComment(r.db.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return c, nil
}

func (r *commentRepo) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	const q = `
		INSERT INTO comments (id, content, author, article_id, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + commentColumns
	out, err := scanComment(r.db.QueryRow(ctx, q, c.ID, c.Content, c.Author, c.ArticleID, c.UserID))
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *commentRepo) UpdateContent(ctx context.Context, id, content string) (*models.Comment, error) {
	const q = `
		UPDATE comments SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + commentColumns
	c, err := scanComment(r.db.QueryRow(ctx, q, id, content))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return c, nil
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return notFoundOr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
