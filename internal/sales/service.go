package sales

import (
	"context"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Service provides the sales operations exposed over HTTP on a Storage backend.
type Service struct {
	storage Storage
	logger  *zap.Logger
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// ListSales returns every recorded sale.
func (s *Service) ListSales(ctx context.Context) ([]*Sale, error) {
	all, err := s.storage.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to list sales", zap.Error(err))
		return nil, err
	}
	if all == nil {
		all = []*Sale{}
	}

	s.logger.Debug("sales listed", zap.Int("results_count", len(all)))
	return all, nil
}

// CreateSale persists a candidate sale. Any client supplied ID is discarded;
// the storage layer assigns it.
func (s *Service) CreateSale(ctx context.Context, candidate *Sale) (*Sale, error) {
	if candidate == nil {
		return nil, ErrConstraintViolation
	}
	unsaved := *candidate
	unsaved.ID = 0

	sale, err := s.storage.Persist(ctx, &unsaved)
	if err != nil {
		if errors.Is(err, ErrConstraintViolation) {
			s.logger.Warn("sale rejected by storage constraint", zap.Error(err))
		} else {
			s.logger.Error("failed to save sale", zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("sale created", zap.Uint("sale_id", sale.ID), zap.Any("sale", sale))
	return sale, nil
}
