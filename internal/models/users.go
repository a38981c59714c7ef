package models

// Credentials - модель для регистрации и аутентификации пользователя
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ErrorResponse - тело ответа сервера с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}
