package api

import (
	"context"

	"github.com/opencustody/consolekit/httpclient"
	"github.com/opencustody/consolekit/internal/utils"
)

// Limit caps an operation volume over a rolling period. A nil ClientID
// means the limit is platform-wide.
type Limit struct {
	ID       string  `json:"id"`
	ClientID *string `json:"clientId,omitempty"`
	Currency string  `json:"currency"`
	Period   string  `json:"period"`
	Amount   string  `json:"amount"`
}

// Scope reports which client a limit applies to, or "global".
func (l Limit) Scope() string {
	if id := utils.Value(l.ClientID); id != "" {
		return id
	}
	return "global"
}

// LimitInput is the create/update payload for a limit.
type LimitInput struct {
	ClientID *string `json:"clientId,omitempty"`
	Currency string  `json:"currency"`
	Period   string  `json:"period"`
	Amount   string  `json:"amount"`
}

// ForClient scopes the payload to a single client.
func (in LimitInput) ForClient(id string) LimitInput {
	in.ClientID = utils.Ptr(id)
	return in
}

// LimitsService manages the limits screen.
type LimitsService struct {
	client *httpclient.Client
}

func (s *LimitsService) List(ctx context.Context, p ListParams) (Page[Limit], error) {
	var page Page[Limit]
	err := s.client.Get(ctx, "limits", p.Query(), &page)
	return page, err
}

func (s *LimitsService) Get(ctx context.Context, id string) (*Limit, error) {
	var l Limit
	if err := s.client.Get(ctx, "limits/"+id, nil, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *LimitsService) Create(ctx context.Context, in LimitInput) (*Limit, error) {
	var l Limit
	if err := s.client.Post(ctx, "limits", in, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *LimitsService) Update(ctx context.Context, id string, in LimitInput) (*Limit, error) {
	var l Limit
	if err := s.client.Put(ctx, "limits/"+id, in, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *LimitsService) Delete(ctx context.Context, id string) error {
	return s.client.Delete(ctx, "limits/"+id)
}
