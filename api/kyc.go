package api

import (
	"context"
	"time"

	"github.com/opencustody/consolekit/httpclient"
)

// KYCRequest is a pending identity verification awaiting review.
type KYCRequest struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"clientId"`
	Status       string    `json:"status"`
	DocumentType string    `json:"documentType"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

type kycDecision struct {
	Reason string `json:"reason,omitempty"`
}

// KYCService manages the KYC review screen.
type KYCService struct {
	client *httpclient.Client
}

func (s *KYCService) List(ctx context.Context, p ListParams) (Page[KYCRequest], error) {
	var page Page[KYCRequest]
	err := s.client.Get(ctx, "kyc/requests", p.Query(), &page)
	return page, err
}

func (s *KYCService) Get(ctx context.Context, id string) (*KYCRequest, error) {
	var r KYCRequest
	if err := s.client.Get(ctx, "kyc/requests/"+id, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Approve accepts the verification. The approval rules themselves are
// enforced server-side.
func (s *KYCService) Approve(ctx context.Context, id string) error {
	return s.client.Post(ctx, "kyc/requests/"+id+"/approve", nil, nil)
}

// Reject declines the verification with a reviewer-provided reason.
func (s *KYCService) Reject(ctx context.Context, id, reason string) error {
	return s.client.Post(ctx, "kyc/requests/"+id+"/reject", kycDecision{Reason: reason}, nil)
}
