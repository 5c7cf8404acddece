package api

import (
	"context"

	"github.com/opencustody/consolekit/httpclient"
)

// Currency is an asset supported by the platform.
type Currency struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Decimals   int    `json:"decimals"`
	Enabled    bool   `json:"enabled"`
	MinDeposit string `json:"minDeposit"`
}

// CurrencyInput is the create/update payload for a currency.
type CurrencyInput struct {
	Name       string `json:"name"`
	Decimals   int    `json:"decimals"`
	Enabled    bool   `json:"enabled"`
	MinDeposit string `json:"minDeposit,omitempty"`
}

// CurrenciesService manages the currencies screen.
type CurrenciesService struct {
	client *httpclient.Client
}

func (s *CurrenciesService) List(ctx context.Context, p ListParams) (Page[Currency], error) {
	var page Page[Currency]
	err := s.client.Get(ctx, "currencies", p.Query(), &page)
	return page, err
}

func (s *CurrenciesService) Get(ctx context.Context, code string) (*Currency, error) {
	var c Currency
	if err := s.client.Get(ctx, "currencies/"+code, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CurrenciesService) Update(ctx context.Context, code string, in CurrencyInput) (*Currency, error) {
	var c Currency
	if err := s.client.Put(ctx, "currencies/"+code, in, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
