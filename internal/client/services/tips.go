package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/traveldiary/internal/client/client"
	"github.com/dmitrijs2005/traveldiary/internal/client/models"
)

type TipService interface {
	List(ctx context.Context) ([]models.TravelTip, error)
}

type tipService struct {
	gw      client.Gateway
	session *Session
}

func NewTipService(gw client.Gateway, session *Session) TipService {
	return &tipService{gw: gw, session: session}
}

// List waits for the session to settle and fetches the tips.
func (s *tipService) List(ctx context.Context) ([]models.TravelTip, error) {

	if err := s.session.Await(ctx); err != nil {
		return nil, err
	}

	tips, err := s.gw.ListTips(ctx)
	if err != nil {
		if errors.Is(err, client.ErrNotAuthenticated) {
			s.session.Invalidate(ctx)
		}
		return nil, fmt.Errorf("list tips: %w", err)
	}
	return tips, nil
}
