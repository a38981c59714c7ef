package validators

import (
	"errors"
	"strings"

	"github.com/denmor86/ya-minerpool/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount      = errors.New("enter a valid amount")
	ErrInvalidCredentials = errors.New("username and password required")
	ErrEmptyMessage       = errors.New("empty message")
)

// ParseRewardAmount проверяет сумму награды: только положительное десятичное число
func ParseRewardAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// CheckCredentials проверяет, что имя и пароль заданы
func CheckCredentials(creds models.Credentials) (models.Credentials, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	creds.Password = strings.TrimSpace(creds.Password)
	if creds.Username == "" || creds.Password == "" {
		return creds, ErrInvalidCredentials
	}
	return creds, nil
}

// NormalizeChatMessage обрезает пробелы, пустое сообщение не отправляется
func NormalizeChatMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	return message, nil
}
