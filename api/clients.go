package api

import (
	"context"
	"time"

	"github.com/opencustody/consolekit/httpclient"
)

// Client is a custody platform customer.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	RiskLevel string    `json:"riskLevel"`
	CreatedAt time.Time `json:"createdAt"`
}

// ClientInput is the create/update payload for a client.
type ClientInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Status    string `json:"status,omitempty"`
	RiskLevel string `json:"riskLevel,omitempty"`
}

// ClientsService manages the clients screen.
type ClientsService struct {
	client *httpclient.Client
}

func (s *ClientsService) List(ctx context.Context, p ListParams) (Page[Client], error) {
	var page Page[Client]
	err := s.client.Get(ctx, "clients", p.Query(), &page)
	return page, err
}

func (s *ClientsService) Get(ctx context.Context, id string) (*Client, error) {
	var c Client
	if err := s.client.Get(ctx, "clients/"+id, nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ClientsService) Create(ctx context.Context, in ClientInput) (*Client, error) {
	var c Client
	if err := s.client.Post(ctx, "clients", in, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ClientsService) Update(ctx context.Context, id string, in ClientInput) (*Client, error) {
	var c Client
	if err := s.client.Put(ctx, "clients/"+id, in, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ClientsService) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "clients/"+id)
}
