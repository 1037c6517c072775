package application

import (
	"context"
	"strings"

	domainerrors "mintery/contexts/market-core/sale-engine/domain/errors"
	"mintery/contexts/market-core/sale-engine/ports"
)

const defaultViewLimit = 100

func (s *Service) GetSale(ctx context.Context, nftContractID string, tokenID string) (ports.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, found, err := s.Repo.GetSale(ctx, strings.TrimSpace(nftContractID), strings.TrimSpace(tokenID))
	if err != nil {
		return ports.Sale{}, err
	}
	if !found {
		return ports.Sale{}, domainerrors.ErrNoSale
	}
	return sale, nil
}

func (s *Service) SupplySales(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Repo.CountSales(ctx)
}

func (s *Service) SupplyByOwner(ctx context.Context, ownerID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Repo.CountSalesByOwner(ctx, strings.TrimSpace(ownerID))
}

func (s *Service) SupplyByNFTContract(ctx context.Context, nftContractID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Repo.CountSalesByNFTContract(ctx, strings.TrimSpace(nftContractID))
}

func (s *Service) SalesByOwner(
	ctx context.Context,
	ownerID string,
	fromIndex uint64,
	limit int,
) ([]ports.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Repo.ListSalesByOwner(ctx, strings.TrimSpace(ownerID), fromIndex, normalizeLimit(limit))
}

func (s *Service) SalesByNFTContract(
	ctx context.Context,
	nftContractID string,
	fromIndex uint64,
	limit int,
) ([]ports.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Repo.ListSalesByNFTContract(ctx, strings.TrimSpace(nftContractID), fromIndex, normalizeLimit(limit))
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultViewLimit
	}
	return limit
}
