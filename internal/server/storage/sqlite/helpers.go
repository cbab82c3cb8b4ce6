package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// execer позволяет выполнять вставки как через *sql.DB, так и внутри транзакции
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// isUniqueViolation проверяет нарушение уникальности первичного ключа
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Время хранится в миллисекундах unix, UTC
func timeToUnix(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func unixToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
