package handlers

import "context"

// contextKey тип для ключей контекста
type contextKey string

const (
	// OperatorKey ключ для хранения имени оператора в контексте
	OperatorKey contextKey = "operator"
	// RequestIDKey ключ для хранения идентификатора запроса в контексте
	RequestIDKey contextKey = "request_id"
)

// WithOperator кладет имя оператора в контекст запроса
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, OperatorKey, operator)
}

// GetOperator извлекает имя оператора из контекста запроса
func GetOperator(ctx context.Context) (string, bool) {
	operator, ok := ctx.Value(OperatorKey).(string)
	return operator, ok && operator != ""
}

// GetRequestID извлекает идентификатор запроса из контекста
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
