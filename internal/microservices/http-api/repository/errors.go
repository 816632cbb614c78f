package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a row addressed by ID does not exist.
var ErrNotFound = errors.New("record not found")

type StoreErrorKind string

const (
	KindUnavailable StoreErrorKind = "unavailable"
	KindConstraint  StoreErrorKind = "constraint"
	KindOther       StoreErrorKind = "other"
)

// StoreError wraps a failure reported by the database itself.
type StoreError struct {
	Op   string
	Kind StoreErrorKind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: store %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// wrapErr maps gorm's not-found onto ErrNotFound and everything else onto a
// classified StoreError. Errors that are already classified pass through.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Kind: classify(err), Err: err}
}

func classify(err error) StoreErrorKind {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey),
		errors.Is(err, gorm.ErrForeignKeyViolated),
		errors.Is(err, gorm.ErrCheckConstraintViolated):
		return KindConstraint
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		pgconn.Timeout(err):
		return KindUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23": // integrity_constraint_violation
			return KindConstraint
		case len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "08" || pgErr.Code[:2] == "57"): // connection_exception, operator_intervention
			return KindUnavailable
		}
		return KindOther
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062, 1451, 1452, 3819: // duplicate key, fk parent/child, check
			return KindConstraint
		case 1040, 1053, 1205, 2002, 2003, 2006, 2013: // too many conns, shutdown, lock wait, lost connection
			return KindUnavailable
		}
		return KindOther
	}

	if errors.Is(err, mysql.ErrInvalidConn) {
		return KindUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindUnavailable
	}
	return KindOther
}
