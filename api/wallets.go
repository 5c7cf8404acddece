package api

import (
	"context"

	"github.com/opencustody/consolekit/httpclient"
)

// Wallet is a custody address holding one currency for one client.
type Wallet struct {
	ID       string `json:"id"`
	ClientID string `json:"clientId"`
	Currency string `json:"currency"`
	Address  string `json:"address"`
	Balance  string `json:"balance"`
}

// WalletInput is the create payload for a wallet.
type WalletInput struct {
	ClientID string `json:"clientId"`
	Currency string `json:"currency"`
}

// WalletsService manages the wallets screen.
type WalletsService struct {
	client *httpclient.Client
}

func (s *WalletsService) List(ctx context.Context, p ListParams) (Page[Wallet], error) {
	var page Page[Wallet]
	err := s.client.Get(ctx, "wallets", p.Query(), &page)
	return page, err
}

func (s *WalletsService) Get(ctx context.Context, id string) (*Wallet, error) {
	var w Wallet
	if err := s.client.Get(ctx, "wallets/"+id, nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *WalletsService) Create(ctx context.Context, in WalletInput) (*Wallet, error) {
	var w Wallet
	if err := s.client.Post(ctx, "wallets", in, &w); err != nil {
		return nil, err
	}
	return &w, nil
}
