package api

// Response представляет базовый ответ API
type Response struct {
	Success bool   `json:"success"`           // результат операции
	Message string `json:"message,omitempty"` // сообщение для пользователя
}

// UpdateResponse представляет результат загрузки прошивки
type UpdateResponse struct {
	Message string `json:"message,omitempty"`
	SHA256  string `json:"sha256,omitempty"` // контрольная сумма записанного образа
	Bytes   int64  `json:"bytes"`            // размер записанного образа
	Success bool   `json:"success"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`           // всегда false
	Error   string `json:"error"`             // описание ошибки (текст HTTP статуса)
	Message string `json:"message,omitempty"` // дополнительное сообщение
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Storage string `json:"storage,omitempty"`
}

// TimeResponse представляет состояние часов контроллера
type TimeResponse struct {
	Time     string `json:"time,omitempty"`      // локальное время YYYY-MM-DD HH:MM:SS
	LastSync string `json:"last_sync,omitempty"` // время последней синхронизации
	Epoch    int64  `json:"epoch"`               // локальное время в секундах
	Success  bool   `json:"success"`
	Synced   bool   `json:"synced"`
	DST      bool   `json:"dst"`
}
