package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wikihub/internal/models"
)

type ArticleRepo interface {
	CreateWithFirstVersion(ctx context.Context, a *models.Article, v *models.ArticleVersion) (*models.Article, error)
	AppendVersion(ctx context.Context, v *models.ArticleVersion) (*models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	List(ctx context.Context, f models.ArticleFilter) ([]*models.ArticleSummary, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)

	AppendAttachments(ctx context.Context, id string, atts []models.Attachment) (*models.Article, error)
	RemoveAttachment(ctx context.Context, id, attachmentID string) (*models.Article, error)
	AttachmentFilenames(ctx context.Context, id string) ([]string, error)
	ReferencedFilenames(ctx context.Context) (map[string]struct{}, error)

	ListVersions(ctx context.Context, articleID string) ([]*models.VersionSummary, error)
	GetVersion(ctx context.Context, articleID string, version int) (*models.ArticleVersion, error)
}

type articleRepo struct{ db *pgxpool.Pool }

func NewArticleRepo(db *pgxpool.Pool) ArticleRepo { return &articleRepo{db: db} }

const articleSelect = `
	SELECT a.id::text, a.title, a.content, a.workspace_id, COALESCE(w.name, ''), a.attachments,
	       a.current_version, a.latest_version_id::text, a.user_id::text, COALESCE(u.name, ''),
	       a.created_at, a.updated_at
	FROM articles a
	LEFT JOIN users u ON u.id = a.user_id
	LEFT JOIN workspaces w ON w.id = a.workspace_id
`

func scanArticle(row pgx.Row) (*models.Article, error) {
	var a models.Article
	var attRaw []byte
	if err := row.Scan(
		&a.ID, &a.Title, &a.Content, &a.WorkspaceID, &a.WorkspaceName, &attRaw,
		&a.CurrentVersion, &a.LatestVersionID, &a.UserID, &a.AuthorName,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Attachments = decodeAttachments(attRaw)
	return &a, nil
}

func decodeAttachments(raw []byte) []models.Attachment {
	out := []models.Attachment{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

func encodeAttachments(atts []models.Attachment) []byte {
	if atts == nil {
		atts = []models.Attachment{}
	}
	b, _ := json.Marshal(atts)
	return b
}

// CreateWithFirstVersion пишет статью и версию №1 в одной транзакции.
func (r *articleRepo) CreateWithFirstVersion(ctx context.Context, a *models.Article, v *models.ArticleVersion) (*models.Article, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const qArticle = `
		INSERT INTO articles (id, title, content, workspace_id, attachments, current_version, latest_version_id, user_id)
		VALUES ($1, $2, $3, $4, $5::jsonb, 1, $6, $7)
	`
	if _, err := tx.Exec(ctx, qArticle,
		a.ID, a.Title, a.Content, a.WorkspaceID, encodeAttachments(a.Attachments), v.ID, a.UserID,
	); err != nil {
		return nil, err
	}

	if err := insertVersion(ctx, tx, v); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, a.ID)
}

func insertVersion(ctx context.Context, tx pgx.Tx, v *models.ArticleVersion) error {
	const q = `
		INSERT INTO article_versions (id, article_id, version, title, content, workspace_id, attachments, created_by, change_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9)
	`
	_, err := tx.Exec(ctx, q,
		v.ID, v.ArticleID, v.Version, v.Title, v.Content, v.WorkspaceID,
		encodeAttachments(v.Attachments), v.CreatedBy, v.ChangeReason,
	)
	switch pgCode(err) {
	case "":
		return err
	case pgUniqueViolation:
		return ErrVersionConflict
	case pgForeignKeyViolation:
		return ErrNotFound
	default:
		return err
	}
}

// AppendVersion добавляет версию v.Version и переносит её поля в статью.
// Статья обновляется только если её current_version всё ещё v.Version-1.
func (r *articleRepo) AppendVersion(ctx context.Context, v *models.ArticleVersion) (*models.Article, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := insertVersion(ctx, tx, v); err != nil {
		return nil, err
	}

	const q = `
		UPDATE articles
		SET title = $2,
		    content = $3,
		    workspace_id = $4,
		    attachments = $5::jsonb,
		    current_version = $6,
		    latest_version_id = $7,
		    updated_at = NOW()
		WHERE id = $1 AND current_version = $8
	`
	tag, err := tx.Exec(ctx, q,
		v.ArticleID, v.Title, v.Content, v.WorkspaceID, encodeAttachments(v.Attachments),
		v.Version, v.ID, v.Version-1,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrVersionConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, v.ArticleID)
}

func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	a, err := scanArticle(r.db.QueryRow(ctx, articleSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err)
	}
	return a, nil
}

func (r *articleRepo) List(ctx context.Context, f models.ArticleFilter) ([]*models.ArticleSummary, error) {
	const qBase = `
		SELECT a.id::text, a.title, a.workspace_id, COALESCE(w.name, ''), a.attachments,
		       a.current_version, a.user_id::text, COALESCE(u.name, ''), a.created_at, a.updated_at
		FROM articles a
		LEFT JOIN users u ON u.id = a.user_id
		LEFT JOIN workspaces w ON w.id = a.workspace_id
	`
	where := []string{}
	args := []interface{}{}
	i := 1

	if f.WorkspaceID != "" {
		where = append(where, fmt.Sprintf("a.workspace_id = $%d", i))
		args = append(args, f.WorkspaceID)
		i++
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, fmt.Sprintf("(a.title ILIKE $%d OR a.content ILIKE $%d)", i, i))
		args = append(args, likePattern(s))
		i++
	}
	if f.IDs != nil {
		where = append(where, fmt.Sprintf("a.id::text = ANY($%d)", i))
		args = append(args, f.IDs)
	}

	sql := qBase
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY a.created_at DESC"

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*models.ArticleSummary{}
	for rows.Next() {
		var a models.ArticleSummary
		var attRaw []byte
		if err := rows.Scan(
			&a.ID, &a.Title, &a.WorkspaceID, &a.WorkspaceName, &attRaw,
			&a.CurrentVersion, &a.UserID, &a.AuthorName, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		a.Attachments = decodeAttachments(attRaw)
		list = append(list, &a)
	}
	return list, rows.Err()
}

func (r *articleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM articles WHERE id=$1", id)
	if err != nil {
		return notFoundOr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepo) Exists(ctx context.Context, id string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM articles WHERE id = $1)`
	var ok bool
	if err := r.db.QueryRow(ctx, q, id).Scan(&ok); err != nil {
		// id не в формате uuid: такой статьи нет
		if errors.Is(notFoundOr(err), ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// AppendAttachments дописывает вложения одним UPDATE, без read-modify-write.
func (r *articleRepo) AppendAttachments(ctx context.Context, id string, atts []models.Attachment) (*models.Article, error) {
	const q = `
		UPDATE articles
		SET attachments = attachments || $2::jsonb,
		    updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, q, id, encodeAttachments(atts))
	if err != nil {
		return nil, notFoundOr(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *articleRepo) RemoveAttachment(ctx context.Context, id, attachmentID string) (*models.Article, error) {
	const q = `
		UPDATE articles
		SET attachments = COALESCE((
		        SELECT jsonb_agg(e)
		        FROM jsonb_array_elements(attachments) AS e
		        WHERE e->>'id' <> $2
		    ), '[]'::jsonb),
		    updated_at = NOW()
		WHERE id = $1
		  AND EXISTS (SELECT 1 FROM jsonb_array_elements(attachments) AS e WHERE e->>'id' = $2)
	`
	tag, err := r.db.Exec(ctx, q, id, attachmentID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// AttachmentFilenames — файлы статьи и всех её версий.
func (r *articleRepo) AttachmentFilenames(ctx context.Context, id string) ([]string, error) {
	const q = `
		SELECT DISTINCT e->>'filename'
		FROM (
			SELECT attachments FROM articles WHERE id = $1
			UNION ALL
			SELECT attachments FROM article_versions WHERE article_id = $1
		) s, jsonb_array_elements(s.attachments) AS e
		WHERE e->>'filename' IS NOT NULL
	`
	rows, err := r.db.Query(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *articleRepo) ReferencedFilenames(ctx context.Context) (map[string]struct{}, error) {
	const q = `
		SELECT DISTINCT e->>'filename'
		FROM (
			SELECT attachments FROM articles
			UNION ALL
			SELECT attachments FROM article_versions
		) s, jsonb_array_elements(s.attachments) AS e
		WHERE e->>'filename' IS NOT NULL
	`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]struct{}{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out[n] = struct{}{}
	}
	return out, rows.Err()
}

func (r *articleRepo) ListVersions(ctx context.Context, articleID string) ([]*models.VersionSummary, error) {
	const q = `
		SELECT id::text, version, title, created_by, change_reason, created_at
		FROM article_versions
		WHERE article_id = $1
		ORDER BY version DESC
	`
	rows, err := r.db.Query(ctx, q, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*models.VersionSummary{}
	for rows.Next() {
		var v models.VersionSummary
		if err := rows.Scan(&v.ID, &v.Version, &v.Title, &v.CreatedBy, &v.ChangeReason, &v.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

func (r *articleRepo) GetVersion(ctx context.Context, articleID string, version int) (*models.ArticleVersion, error) {
	const q = `
		SELECT id::text, article_id::text, version, title, content, workspace_id, attachments,
		       created_by, change_reason, created_at
		FROM article_versions
		WHERE article_id = $1 AND version = $2
	`
	var v models.ArticleVersion
	var attRaw []byte
	err := r.db.QueryRow(ctx, q, articleID, version).Scan(
		&v.ID, &v.ArticleID, &v.Version, &v.Title, &v.Content, &v.WorkspaceID, &attRaw,
		&v.CreatedBy, &v.ChangeReason, &v.CreatedAt,
	)
	if err != nil {
		return nil, notFoundOr(err)
	}
	v.Attachments = decodeAttachments(attRaw)
	return &v, nil
}
