package database

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/leadflow/leadflow-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPQError(t *testing.T) {
	t.Run("unique reg_nr", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "leads_reg_nr_key"})
		appErr := MapPQError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "CONFLICT", appErr.Code)
		assert.Equal(t, "a lead with this registration number already exists", appErr.Message)
	})

	t.Run("not null", func(t *testing.T) {
		appErr := MapPQError(&pq.Error{Code: "23502", Column: "id"})
		require.NotNil(t, appErr)
		assert.True(t, errors.Is(appErr, errors.ErrValidation))
		assert.Equal(t, "must not be empty", appErr.Details["id"])
	})

	t.Run("unmapped code", func(t *testing.T) {
		assert.Nil(t, MapPQError(&pq.Error{Code: "40001"}))
	})

	t.Run("not a pq error", func(t *testing.T) {
		assert.Nil(t, MapPQError(stderrors.New("boom")))
	})
}
