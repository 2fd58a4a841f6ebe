package dbx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsCode(t *testing.T) {
	unique := &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "users_email_key"}

	assert.True(t, IsCode(unique, CodeUniqueViolation))
	assert.True(t, IsCode(fmt.Errorf("insert: %w", unique), CodeUniqueViolation), "wrapped errors match")
	assert.False(t, IsCode(unique, CodeForeignKeyViolation))
	assert.False(t, IsCode(errors.New("plain"), CodeUniqueViolation))
	assert.False(t, IsCode(nil, CodeUniqueViolation))
}

func TestConstraintName(t *testing.T) {
	err := fmt.Errorf("wrap: %w", &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "users_email_key"})
	assert.Equal(t, "users_email_key", ConstraintName(err))
	assert.Empty(t, ConstraintName(errors.New("plain")))
}
