package validation

import (
	"fmt"
	"regexp"
)

// OperatorPattern определяет допустимый формат имени оператора
// Только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_), точка и дефис
// Длина: 3-32 символа
var OperatorPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

const (
	// MinOperatorLen минимальная длина имени оператора
	MinOperatorLen = 3
	// MaxOperatorLen максимальная длина имени оператора
	MaxOperatorLen = 32
)

// ValidateOperator проверяет имя оператора, для которого выпускается токен
func ValidateOperator(name string) error {
	if name == "" {
		return fmt.Errorf("operator name cannot be empty")
	}

	if len(name) < MinOperatorLen {
		return fmt.Errorf("operator name must be at least %d characters long", MinOperatorLen)
	}

	if len(name) > MaxOperatorLen {
		return fmt.Errorf("operator name must not exceed %d characters", MaxOperatorLen)
	}

	if !OperatorPattern.MatchString(name) {
		return fmt.Errorf("operator name can only contain letters, numbers, underscores, dots and dashes")
	}

	return nil
}
