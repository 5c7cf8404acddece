// Package api provides typed clients for the custody platform's admin REST
// API. Each service is a thin data-fetching layer over the shared HTTP
// client; authorization and business rules live server-side.
package api

import (
	"github.com/opencustody/consolekit/httpclient"
	"github.com/opencustody/consolekit/session"
)

// API bundles one service per console screen.
type API struct {
	Auth         *AuthService
	Clients      *ClientsService
	Currencies   *CurrenciesService
	Fees         *FeesService
	Limits       *LimitsService
	KYC          *KYCService
	Wallets      *WalletsService
	Transactions *TransactionsService
}

// New creates the API facade over client. The session store is only needed
// by the auth service; everything else relies on the interceptor chain to
// carry credentials.
func New(client *httpclient.Client, store *session.Store) *API {
	return &API{
		Auth:         &AuthService{client: client, store: store},
		Clients:      &ClientsService{client: client},
		Currencies:   &CurrenciesService{client: client},
		Fees:         &FeesService{client: client},
		Limits:       &LimitsService{client: client},
		KYC:          &KYCService{client: client},
		Wallets:      &WalletsService{client: client},
		Transactions: &TransactionsService{client: client},
	}
}
