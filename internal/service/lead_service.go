package service

import (
	"context"
	"errors"

	"github.com/fajar1211/remix-of-digitaldev/internal/models"
	"github.com/fajar1211/remix-of-digitaldev/internal/repository"
)

var ErrLeadNotFound = errors.New("lead not found")

const (
	DefaultLeadLimit = 50
	MaxLeadLimit     = 500
)

// LeadService serves the follow-up dashboard
type LeadService struct {
	repo repository.LeadRepository
}

func NewLeadService(repo repository.LeadRepository) *LeadService {
	return &LeadService{repo: repo}
}

// ListLeads returns the newest leads; limit is clamped to [1, MaxLeadLimit]
func (s *LeadService) ListLeads(ctx context.Context, limit int) ([]models.OrderLead, error) {
	if limit <= 0 {
		limit = DefaultLeadLimit
	}
	if limit > MaxLeadLimit {
		limit = MaxLeadLimit
	}
	return s.repo.ListLeads(ctx, limit)
}

func (s *LeadService) MarkRead(ctx context.Context, id string) error {
	found, err := s.repo.MarkLeadRead(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrLeadNotFound
	}
	return nil
}
