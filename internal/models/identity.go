package models

import "github.com/shopspring/decimal"

// Identity - снимок аутентифицированного пользователя и его кошелька.
// Заменяется целиком при каждом обновлении.
type Identity struct {
	Authenticated bool
	Username      string
	WalletAddress string
	Balance       decimal.Decimal
}

// Anonymous - снимок неаутентифицированного пользователя
func Anonymous() Identity {
	return Identity{}
}

// MeResponse - ответ GET /api/me
type MeResponse struct {
	LoggedIn bool      `json:"logged_in"`
	User     *MeUser   `json:"user,omitempty"`
	Wallet   *MeWallet `json:"wallet,omitempty"`
}

type MeUser struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
}

type MeWallet struct {
	Address string          `json:"address"`
	Balance decimal.Decimal `json:"balance"`
}

// Identity - преобразование ответа сервера в снимок
func (r MeResponse) Identity() Identity {
	if !r.LoggedIn || r.User == nil {
		return Anonymous()
	}
	identity := Identity{
		Authenticated: true,
		Username:      r.User.Username,
	}
	if r.Wallet != nil {
		identity.WalletAddress = r.Wallet.Address
		identity.Balance = r.Wallet.Balance
	}
	return identity
}
