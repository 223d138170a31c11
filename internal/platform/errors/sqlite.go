package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ExtractSQLiteError finds a go-sqlite3 driver error anywhere in err's chain
func ExtractSQLiteError(err error) (sqlite3.Error, bool) {
	var se sqlite3.Error
	if stderrs.As(err, &se) {
		return se, true
	}
	var sp *sqlite3.Error
	if stderrs.As(err, &sp) && sp != nil {
		return *sp, true
	}
	return sqlite3.Error{}, false
}

func IsDuplicateKey(err error) bool {
	se, ok := ExtractSQLiteError(err)
	return ok && se.Code == sqlite3.ErrConstraint &&
		(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

// IsBusy covers both SQLITE_BUSY and SQLITE_LOCKED
func IsBusy(err error) bool {
	se, ok := ExtractSQLiteError(err)
	return ok && (se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked)
}

// IsCorrupt is true when the profile file is malformed or not a database
func IsCorrupt(err error) bool {
	se, ok := ExtractSQLiteError(err)
	return ok && (se.Code == sqlite3.ErrCorrupt || se.Code == sqlite3.ErrNotADB)
}

// DBErrorCode classifies a driver error; ok is false for anything else
func DBErrorCode(err error) (ErrorCode, bool) {
	se, ok := ExtractSQLiteError(err)
	if !ok {
		return ErrorCodeUnknown, false
	}
	switch {
	case IsDuplicateKey(err):
		return ErrorCodeDuplicateKey, true
	case se.Code == sqlite3.ErrConstraint:
		return ErrorCodeValidation, true
	case IsCorrupt(err):
		return ErrorCodePersistence, true
	case IsBusy(err), se.Code == sqlite3.ErrCantOpen, se.Code == sqlite3.ErrPerm, se.Code == sqlite3.ErrReadonly:
		return ErrorCodeUnavailable, true
	default:
		return ErrorCodeDB, true
	}
}

// FromSQLite wraps err under its mapped code, or DB for foreign errors. nil
// stays nil
func FromSQLite(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := DBErrorCode(err)
	if !ok {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// IsRetryable reports a busy or locked database. Cancellation and deadlines
// never retry
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case stderrs.Is(err, context.Canceled), stderrs.Is(err, context.DeadlineExceeded):
		return false
	case IsBusy(err):
		return true
	}
	msg := strings.ToLower(rootCause(err).Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

func rootCause(err error) error {
	for {
		next := stderrs.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
