package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWrapErr(t *testing.T) {
	assert.NoError(t, wrapErr("op", nil))
	assert.ErrorIs(t, wrapErr("op", gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, wrapErr("op", fmt.Errorf("tx: %w", gorm.ErrRecordNotFound)), ErrNotFound)

	err := wrapErr("insert", errors.New("boom"))
	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert", se.Op)
	assert.Equal(t, KindOther, se.Kind)
	assert.Contains(t, err.Error(), "boom")

	// already classified errors keep their original op
	assert.Same(t, se, errors.Unwrap(fmt.Errorf("outer: %w", wrapErr("again", err))))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want StoreErrorKind
	}{
		{"Duplicate", gorm.ErrDuplicatedKey, KindConstraint},
		{"ForeignKey", gorm.ErrForeignKeyViolated, KindConstraint},
		{"BadConn", driver.ErrBadConn, KindUnavailable},
		{"Deadline", context.DeadlineExceeded, KindUnavailable},
		{"PgUnique", &pgconn.PgError{Code: "23505"}, KindConstraint},
		{"PgConnection", &pgconn.PgError{Code: "08006"}, KindUnavailable},
		{"PgAdminShutdown", &pgconn.PgError{Code: "57P01"}, KindUnavailable},
		{"PgSyntax", &pgconn.PgError{Code: "42601"}, KindOther},
		{"MySQLDuplicate", &mysql.MySQLError{Number: 1062}, KindConstraint},
		{"MySQLCheck", &mysql.MySQLError{Number: 3819}, KindConstraint},
		{"MySQLGone", &mysql.MySQLError{Number: 2006}, KindUnavailable},
		{"MySQLOther", &mysql.MySQLError{Number: 1146}, KindOther},
		{"MySQLInvalidConn", mysql.ErrInvalidConn, KindUnavailable},
		{"Plain", errors.New("nope"), KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}
