package api

import (
	"context"

	"github.com/opencustody/consolekit/httpclient"
)

// Fee is a pricing rule for one operation in one currency. Amounts are
// decimal strings; the client never does money arithmetic.
type Fee struct {
	ID        string `json:"id"`
	Currency  string `json:"currency"`
	Operation string `json:"operation"`
	Percent   string `json:"percent"`
	Fixed     string `json:"fixed"`
}

// FeeInput is the create/update payload for a fee.
type FeeInput struct {
	Currency  string `json:"currency"`
	Operation string `json:"operation"`
	Percent   string `json:"percent"`
	Fixed     string `json:"fixed"`
}

// FeesService manages the fees screen.
type FeesService struct {
	client *httpclient.Client
}

func (s *FeesService) List(ctx context.Context, p ListParams) (Page[Fee], error) {
	var page Page[Fee]
	err := s.client.Get(ctx, "fees", p.Query(), &page)
	return page, err
}

func (s *FeesService) Create(ctx context.Context, in FeeInput) (*Fee, error) {
	var f Fee
	if err := s.client.Post(ctx, "fees", in, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FeesService) Update(ctx context.Context, id string, in FeeInput) (*Fee, error) {
	var f Fee
	if err := s.client.Put(ctx, "fees/"+id, in, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FeesService) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "fees/"+id)
}
