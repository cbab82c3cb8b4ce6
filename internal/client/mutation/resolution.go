package mutation

// ConflictType описывает вид столкновения двух писателей
type ConflictType string

const (
	ConflictVersion        ConflictType = "version_conflict"
	ConflictDoubleMove     ConflictType = "double_move"
	ConflictConcurrentEdit ConflictType = "concurrent_edit"
)

// Resolution is created when the server rejects a write because the token
// the client sent is stale. It lives until a human (or the auto-retry
// policy) resolves it.
type Resolution struct {
	Details         map[string]any // текущие значения полей на сервере
	EntityID        string
	Type            ConflictType
	CurrentVersion  int64 // версия на сервере
	ProvidedVersion int64 // устаревшая версия клиента
}
