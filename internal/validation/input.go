package validation

import (
	"fmt"
	"regexp"
)

// KeyPattern определяет допустимый формат ключа хранилища
// Буква k и индекс без ведущих нулей: k0, k7, k99
var KeyPattern = regexp.MustCompile(`^k(0|[1-9][0-9]{0,3})$`)

// MinPasswordLen минимальная длина пароля администратора
const MinPasswordLen = 8

// ValidateKey проверяет формат ключа, полученного от клиента
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if !KeyPattern.MatchString(key) {
		return fmt.Errorf("key must look like k<index>, got %q", key)
	}

	return nil
}

// ValidatePassword проверяет минимальные требования к паролю администратора
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	return nil
}
