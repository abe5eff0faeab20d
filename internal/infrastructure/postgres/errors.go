package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-social/internal/domain/errs"
)

const (
	codeUniqueViolation = "23505"
	codeCheckViolation  = "23514"
	codeInvalidText     = "22P02"
)

// mapErr translates driver errors into the domain taxonomy.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.NotFound("%s not found", what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			switch pgErr.ConstraintName {
			case "users_username_key":
				return errs.Conflict("username is already taken")
			case "users_email_key":
				return errs.Conflict("email is already taken")
			}
			return errs.Conflict("%s already exists", what)
		case codeCheckViolation:
			if pgErr.ConstraintName == "users_no_self_follow" {
				return errs.SelfReference("a user cannot follow itself")
			}
			return errs.Validation("invalid %s", what)
		case codeInvalidText:
			return errs.NotFound("%s not found", what)
		}
	}
	return errs.Store(err, "%s", what)
}

// isUUID guards queries against ids that can never resolve.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func onlyUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			out = append(out, id)
		}
	}
	return out
}
