package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/leadflow/leadflow-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError.
// Returns nil if err is not a *pq.Error or the code is not mapped.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	case "23505": // unique_violation
		return errors.Conflict(uniqueMessage(pqErr.Constraint))
	case "23503": // foreign_key_violation
		return errors.BadRequest("referenced record does not exist")
	case "23502": // not_null_violation
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{col: "must not be empty"})
	case "23514": // check_violation
		return errors.BadRequest("data validation failed: " + pqErr.Constraint)
	default:
		return nil
	}
}

func uniqueMessage(constraint string) string {
	switch {
	case strings.Contains(constraint, "reg_nr"):
		return "a lead with this registration number already exists"
	case strings.Contains(constraint, "chassis"):
		return "a lead with this chassis number already exists"
	default:
		return "a record with these values already exists"
	}
}
