package postgres

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
	"github.com/oksasatya/go-ddd-social/internal/domain/repository"
)

const postColumns = `id::text, user_id::text, text, img, likes::text[], comments,
	COALESCE(quoted_post_id, ''), created_at, updated_at`

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func scanPost(row pgx.Row) (*entity.Post, error) {
	p := &entity.Post{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Text, &p.Img, &p.Likes, &p.Comments,
		&p.QuotedPostID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if p.Comments == nil {
		p.Comments = []entity.Comment{}
	}
	return p, nil
}

func collectPosts(rows pgx.Rows) ([]*entity.Post, error) {
	defer rows.Close()
	out := make([]*entity.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullableText(id string) any {
	if id == "" {
		return nil
	}
	return id
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	if !isUUID(p.UserID) {
		return errs.NotFound("user not found")
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (user_id, text, img, quoted_post_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, likes::text[], comments, created_at, updated_at
	`, p.UserID, p.Text, p.Img, nullableText(p.QuotedPostID))
	err := row.Scan(&p.ID, &p.Likes, &p.Comments, &p.CreatedAt, &p.UpdatedAt)
	return mapErr(err, "post")
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	if !isUUID(id) {
		return nil, errs.NotFound("post not found")
	}
	p, err := scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "post")
	}
	return p, nil
}

func (r *PostRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.Post, error) {
	return r.Find(ctx, repository.PostFilter{IDs: ids})
}

func (r *PostRepository) Find(ctx context.Context, f repository.PostFilter) ([]*entity.Post, error) {
	var (
		where []string
		args  []any
	)
	if f.AuthorIDs != nil {
		args = append(args, onlyUUIDs(f.AuthorIDs))
		where = append(where, "user_id = ANY($"+strconv.Itoa(len(args))+"::uuid[])")
	}
	if f.IDs != nil {
		args = append(args, onlyUUIDs(f.IDs))
		where = append(where, "id = ANY($"+strconv.Itoa(len(args))+"::uuid[])")
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + postColumns + ` FROM posts`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	if f.NewestFirst {
		sb.WriteString(" ORDER BY created_at DESC, seq DESC")
	} else {
		sb.WriteString(" ORDER BY seq ASC")
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, mapErr(err, "posts")
	}
	posts, err := collectPosts(rows)
	return posts, mapErr(err, "posts")
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return errs.NotFound("post not found")
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return mapErr(err, "post")
	}
	if res.RowsAffected() == 0 {
		return errs.NotFound("post not found")
	}
	return nil
}

func (r *PostRepository) mutateLikes(ctx context.Context, sql, postID, userID string) ([]string, error) {
	if !isUUID(postID) {
		return nil, errs.NotFound("post not found")
	}
	if !isUUID(userID) {
		return nil, errs.NotFound("user not found")
	}
	var likes []string
	if err := r.pool.QueryRow(ctx, sql, postID, userID).Scan(&likes); err != nil {
		return nil, mapErr(err, "post")
	}
	if likes == nil {
		likes = []string{}
	}
	return likes, nil
}

func (r *PostRepository) AddLike(ctx context.Context, postID, userID string) ([]string, error) {
	return r.mutateLikes(ctx, `
		UPDATE posts
		SET likes = CASE WHEN $2::uuid = ANY(likes) THEN likes ELSE array_append(likes, $2::uuid) END
		WHERE id = $1
		RETURNING likes::text[]
	`, postID, userID)
}

func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID string) ([]string, error) {
	return r.mutateLikes(ctx, `
		UPDATE posts SET likes = array_remove(likes, $2::uuid)
		WHERE id = $1
		RETURNING likes::text[]
	`, postID, userID)
}

// AppendComment concatenates onto the stored JSONB array in place; the
// document is never read back and rewritten, so concurrent comments are kept.
func (r *PostRepository) AppendComment(ctx context.Context, postID string, c entity.Comment) error {
	if !isUUID(postID) {
		return errs.NotFound("post not found")
	}
	b, err := json.Marshal(c)
	if err != nil {
		return errs.Store(err, "encode comment")
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET comments = comments || jsonb_build_array($2::jsonb), updated_at = now()
		WHERE id = $1
	`, postID, string(b))
	if err != nil {
		return mapErr(err, "post")
	}
	if res.RowsAffected() == 0 {
		return errs.NotFound("post not found")
	}
	return nil
}

func (r *PostRepository) ListPage(ctx context.Context, afterID string, limit int) ([]*entity.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE id::text > $1
		ORDER BY id::text
		LIMIT $2
	`, afterID, limit)
	if err != nil {
		return nil, mapErr(err, "posts")
	}
	posts, err := collectPosts(rows)
	return posts, mapErr(err, "posts")
}

var _ repository.PostRepository = (*PostRepository)(nil)
