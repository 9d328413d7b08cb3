package api

// Entry представляет одну запись хранилища
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// KeyRequest представляет JSON запрос /api/insert и /api/remove
type KeyRequest struct {
	Value string `json:"value,omitempty"` // значение для добавления или удаления
	Key   string `json:"key,omitempty"`   // ключ для удаления (только /api/remove)
}

// KeyResponse представляет ответ на добавление или удаление записи
type KeyResponse struct {
	Key     string `json:"key,omitempty"` // ключ затронутой записи
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

// ListResponse представляет содержимое хранилища
type ListResponse struct {
	Entries  []Entry `json:"entries"`
	Count    int     `json:"count"`    // число занятых слотов
	Capacity int     `json:"capacity"` // общее число слотов
	Success  bool    `json:"success"`
}
