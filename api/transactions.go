package api

import (
	"context"
	"time"

	"github.com/opencustody/consolekit/httpclient"
)

// Transaction is a deposit, withdrawal or internal transfer.
type Transaction struct {
	ID        string    `json:"id"`
	WalletID  string    `json:"walletId"`
	Type      string    `json:"type"`
	Currency  string    `json:"currency"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"`
	TxHash    string    `json:"txHash,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TransactionsService manages the transactions screen. Transactions are
// read-only from the console.
type TransactionsService struct {
	client *httpclient.Client
}

func (s *TransactionsService) List(ctx context.Context, p ListParams) (Page[Transaction], error) {
	var page Page[Transaction]
	err := s.client.Get(ctx, "transactions", p.Query(), &page)
	return page, err
}

func (s *TransactionsService) Get(ctx context.Context, id string) (*Transaction, error) {
	var tx Transaction
	if err := s.client.Get(ctx, "transactions/"+id, nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
