package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
	"github.com/oksasatya/go-ddd-social/internal/domain/repository"
)

const userColumns = `id::text, username, email, password_hash, full_name, bio, link, profile_img, cover_img,
	followers::text[], following::text[], liked_posts::text[], created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FullName, &u.Bio, &u.Link,
		&u.ProfileImg, &u.CoverImg, &u.Followers, &u.Following, &u.LikedPosts,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func collectUsers(rows pgx.Rows) ([]*entity.User, error) {
	defer rows.Close()
	out := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, full_name, bio, link, profile_img, cover_img)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id::text, followers::text[], following::text[], liked_posts::text[], created_at, updated_at
	`, u.Username, u.Email, u.Password, u.FullName, u.Bio, u.Link, u.ProfileImg, u.CoverImg)

	err := row.Scan(&u.ID, &u.Followers, &u.Following, &u.LikedPosts, &u.CreatedAt, &u.UpdatedAt)
	return mapErr(err, "user")
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if !isUUID(id) {
		return nil, errs.NotFound("user not found")
	}
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, "user")
	}
	return u, nil
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	ids = onlyUUIDs(ids)
	if len(ids) == 0 {
		return []*entity.User{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, mapErr(err, "users")
	}
	users, err := collectUsers(rows)
	return users, mapErr(err, "users")
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username))
	if err != nil {
		return nil, mapErr(err, "user")
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, mapErr(err, "user")
	}
	return u, nil
}

// Update writes profile fields only; relationship sets are left to AddToSet/RemoveFromSet.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	if !isUUID(u.ID) {
		return errs.NotFound("user not found")
	}
	u.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET username = $1, email = $2, password_hash = $3, full_name = $4, bio = $5, link = $6,
		    profile_img = $7, cover_img = $8, updated_at = $9
		WHERE id = $10
	`, u.Username, u.Email, u.Password, u.FullName, u.Bio, u.Link, u.ProfileImg, u.CoverImg, u.UpdatedAt, u.ID)
	if err != nil {
		return mapErr(err, "user")
	}
	if res.RowsAffected() == 0 {
		return errs.NotFound("user not found")
	}
	return nil
}

// AddToSet appends value unless already present. The membership test and the
// write happen in one statement under the row lock, so concurrent callers converge.
func (r *UserRepository) AddToSet(ctx context.Context, userID string, field entity.UserSetField, value string) error {
	if !field.Valid() {
		return errs.Validation("unknown set field %q", field)
	}
	if !isUUID(userID) || !isUUID(value) {
		return errs.NotFound("user not found")
	}
	col := string(field)
	res, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE users
		SET %[1]s = CASE WHEN $2::uuid = ANY(%[1]s) THEN %[1]s ELSE array_append(%[1]s, $2::uuid) END
		WHERE id = $1
	`, col), userID, value)
	if err != nil {
		return mapErr(err, "user")
	}
	if res.RowsAffected() == 0 {
		return errs.NotFound("user not found")
	}
	return nil
}

func (r *UserRepository) RemoveFromSet(ctx context.Context, userID string, field entity.UserSetField, value string) error {
	if !field.Valid() {
		return errs.Validation("unknown set field %q", field)
	}
	if !isUUID(userID) || !isUUID(value) {
		return errs.NotFound("user not found")
	}
	col := string(field)
	res, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE users SET %[1]s = array_remove(%[1]s, $2::uuid) WHERE id = $1
	`, col), userID, value)
	if err != nil {
		return mapErr(err, "user")
	}
	if res.RowsAffected() == 0 {
		return errs.NotFound("user not found")
	}
	return nil
}

func (r *UserRepository) Sample(ctx context.Context, excludeID string, n int) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id::text <> $1
		ORDER BY random()
		LIMIT $2
	`, excludeID, n)
	if err != nil {
		return nil, mapErr(err, "users")
	}
	users, err := collectUsers(rows)
	return users, mapErr(err, "users")
}

func (r *UserRepository) ListPage(ctx context.Context, afterID string, limit int) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id::text > $1
		ORDER BY id::text
		LIMIT $2
	`, afterID, limit)
	if err != nil {
		return nil, mapErr(err, "users")
	}
	users, err := collectUsers(rows)
	return users, mapErr(err, "users")
}

var _ repository.UserRepository = (*UserRepository)(nil)
