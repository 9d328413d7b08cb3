package models

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyPrefix is the prefix of every slot key
const KeyPrefix = "k"

// Entry представляет запись key-value хранилища
type Entry struct {
	Key   string `json:"key"`   // ключ вида k<index>
	Value string `json:"value"` // значение, не длиннее 128 байт
}

// SlotKey returns the key of slot index.
func SlotKey(index int) string {
	return KeyPrefix + strconv.Itoa(index)
}

// SlotIndex parses a key of form "k<index>".
func SlotIndex(key string) (int, error) {
	digits, ok := strings.CutPrefix(key, KeyPrefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("invalid slot key %q", key)
	}
	// только цифры без ведущих нулей: у слота единственный ключ
	if len(digits) > 1 && digits[0] == '0' {
		return 0, fmt.Errorf("invalid slot key %q", key)
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid slot key %q", key)
		}
	}

	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid slot key %q", key)
	}
	return index, nil
}
