package move

import (
	"errors"
	"time"
)

// Config holds the limits of the move pipeline.
type Config struct {
	Timeout            time.Duration // ожидание ответа сервера на одну попытку
	DoubleMoveWindow   time.Duration // окно, в котором повторное перемещение отклоняется
	BaseRetryDelay     time.Duration // задержка перед первым автоповтором
	MaxRetryDelay      time.Duration // верхняя граница задержки
	MaxPending         int           // лимит одновременных оптимистичных обновлений
	MaxConcurrentPerID int           // сколько перемещений одной карточки допускает окно
	MaxAutoRetries     int           // автоповторы при конфликте версий до эскалации
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{
		Timeout:            5 * time.Second,
		DoubleMoveWindow:   2 * time.Second,
		BaseRetryDelay:     time.Second,
		MaxRetryDelay:      5 * time.Second,
		MaxPending:         10,
		MaxConcurrentPerID: 1,
		MaxAutoRetries:     2,
	}
}

// Validate rejects limits the pipeline cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Timeout <= 0:
		return errors.New("move timeout must be positive")
	case c.DoubleMoveWindow < 0:
		return errors.New("double move window must not be negative")
	case c.BaseRetryDelay <= 0 || c.MaxRetryDelay < c.BaseRetryDelay:
		return errors.New("retry delays must be positive and max must not be below base")
	case c.MaxPending <= 0:
		return errors.New("max pending must be positive")
	case c.MaxConcurrentPerID <= 0:
		return errors.New("max concurrent moves per id must be positive")
	case c.MaxAutoRetries < 0:
		return errors.New("max auto retries must not be negative")
	}
	return nil
}
