package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecomlab/sale-recorder/internal/core/domain"
	"github.com/ecomlab/sale-recorder/internal/port"
)

// maxAttempts bounds the internal retry when the conditional decrement loses
// a race against a concurrent writer. After the last attempt the fresh read
// inside the store reports the true outcome.
const maxAttempts = 3

type SaleService struct {
	store        port.SaleStore
	gate         port.AdmissionGate // optional, may be nil
	useStockGate bool
}

type Option func(*SaleService)

// WithAdmissionGate installs the fast-path duplicate check. stockGate also
// enables the gate's stock counter in front of the store.
func WithAdmissionGate(gate port.AdmissionGate, stockGate bool) Option {
	return func(s *SaleService) {
		s.gate = gate
		s.useStockGate = stockGate
	}
}

func NewSaleService(store port.SaleStore, opts ...Option) *SaleService {
	s := &SaleService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordSale validates the request, claims the order id on the admission
// gate when one is configured, and runs the store's atomic check-and-decrement
// unit. Every exit path leaves either the full sale committed or nothing.
func (s *SaleService) RecordSale(ctx context.Context, req domain.SaleRequest) (*domain.SaleConfirmation, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	gatedStock := false
	if s.gate != nil {
		ok, err := s.gate.ReserveOrderID(ctx, req.OrderID)
		if err != nil {
			return nil, fmt.Errorf("reserve order id: %w", err)
		}
		if !ok {
			return nil, domain.ErrDuplicateOrder
		}

		if s.useStockGate {
			ok, err := s.gate.DecrementStock(ctx, req.ProductID, req.Quantity)
			if err != nil {
				s.releaseOrderID(ctx, req.OrderID)
				return nil, fmt.Errorf("gate stock decrement: %w", err)
			}
			if !ok {
				s.releaseOrderID(ctx, req.OrderID)
				return nil, domain.ErrInsufficientStock
			}
			gatedStock = true
		}
	}

	conf, err := s.recordWithRetry(ctx, req)
	if err != nil && s.gate != nil {
		if gatedStock {
			// Compensate the gate counter; the store refused the sale.
			if rbErr := s.gate.IncrementStock(ctx, req.ProductID, req.Quantity); rbErr != nil {
				return nil, fmt.Errorf("gate compensation after %w: %v", err, rbErr)
			}
		}
		if !errors.Is(err, domain.ErrDuplicateOrder) {
			s.releaseOrderID(ctx, req.OrderID)
		}
	}
	return conf, err
}

func (s *SaleService) recordWithRetry(ctx context.Context, req domain.SaleRequest) (*domain.SaleConfirmation, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		conf, err := s.store.RecordSale(ctx, req)
		if err == nil {
			return conf, nil
		}
		if !errors.Is(err, domain.ErrTransactionAborted) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *SaleService) releaseOrderID(ctx context.Context, orderID string) {
	// Best effort: a leaked reservation expires with its TTL.
	_ = s.gate.ReleaseOrderID(ctx, orderID)
}

func validate(req domain.SaleRequest) error {
	switch {
	case req.OrderID == "":
		return fmt.Errorf("%w: missing order id", domain.ErrInvalidRequest)
	case req.OrderItemID == "":
		return fmt.Errorf("%w: missing order item id", domain.ErrInvalidRequest)
	case req.CustomerID == "":
		return fmt.Errorf("%w: missing customer id", domain.ErrInvalidRequest)
	case req.SellerID == "":
		return fmt.Errorf("%w: missing seller id", domain.ErrInvalidRequest)
	case req.ProductID == "":
		return fmt.Errorf("%w: missing product id", domain.ErrInvalidRequest)
	case req.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidRequest)
	}
	return nil
}
