package application

import (
	"context"
	"strings"

	domainerrors "mintery/contexts/nft-core/series-ledger/domain/errors"
	"mintery/contexts/nft-core/series-ledger/ports"
)

const defaultViewLimit = 100

func (s *Service) ContractMetadata(ctx context.Context) (ports.ContractMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.requireState(ctx)
	if err != nil {
		return ports.ContractMetadata{}, err
	}
	return state.Metadata, nil
}

// Token resolves the view shape for one token; absent tokens report false
// rather than an error, matching the Option-style contract view.
func (s *Service) Token(ctx context.Context, tokenID string) (ports.TokenView, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenViewByID(ctx, tokenID)
}

func (s *Service) TotalSupply(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Repo.CountTokens(ctx)
}

func (s *Service) Tokens(ctx context.Context, fromIndex uint64, limit int) ([]ports.TokenView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.Repo.ListTokens(ctx, fromIndex, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.tokenViews(ctx, tokens)
}

func (s *Service) SupplyForOwner(ctx context.Context, accountID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Repo.CountTokensByOwner(ctx, strings.TrimSpace(accountID))
}

func (s *Service) TokensForOwner(
	ctx context.Context,
	accountID string,
	fromIndex uint64,
	limit int,
) ([]ports.TokenView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.Repo.ListTokensByOwner(ctx, strings.TrimSpace(accountID), fromIndex, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.tokenViews(ctx, tokens)
}

func (s *Service) SeriesJSON(ctx context.Context, seriesTitle string) (ports.SeriesView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, err := s.Repo.GetSeriesByTitle(ctx, strings.TrimSpace(seriesTitle))
	if err != nil {
		return ports.SeriesView{}, domainerrors.ErrSeriesNotFound
	}
	return seriesView(series), nil
}

func (s *Service) Series(ctx context.Context, fromIndex uint64, limit int) ([]ports.SeriesView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.Repo.ListSeries(ctx, fromIndex, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	views := make([]ports.SeriesView, 0, len(list))
	for _, series := range list {
		views = append(views, seriesView(series))
	}
	return views, nil
}

func (s *Service) SupplyForSeries(ctx context.Context, seriesTitle string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, err := s.Repo.GetSeriesByTitle(ctx, strings.TrimSpace(seriesTitle))
	if err != nil {
		return 0, domainerrors.ErrSeriesNotFound
	}
	return series.MintedCount, nil
}

func (s *Service) TokensBySeries(
	ctx context.Context,
	seriesTitle string,
	fromIndex uint64,
	limit int,
) ([]ports.TokenView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series, err := s.Repo.GetSeriesByTitle(ctx, strings.TrimSpace(seriesTitle))
	if err != nil {
		return nil, domainerrors.ErrSeriesNotFound
	}
	tokens, err := s.Repo.ListTokensBySeries(ctx, series.SeriesID, fromIndex, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.tokenViews(ctx, tokens)
}

// SeriesFormat returns (token, title, edition) delimiters so callers never
// hard-code the id scheme.
func (s *Service) SeriesFormat() (string, string, string) {
	return TokenDelimiter, TitleDelimiter, EditionDelimiter
}

// RoyaltyForToken resolves the royalty map of the token's series; the sale
// book snapshots it at listing time.
func (s *Service) RoyaltyForToken(ctx context.Context, tokenID string) (map[string]uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.Repo.GetToken(ctx, tokenID)
	if err != nil {
		return nil, domainerrors.ErrTokenNotFound
	}
	series, err := s.Repo.GetSeriesByID(ctx, token.SeriesID)
	if err != nil {
		return nil, domainerrors.ErrSeriesNotFound
	}
	return cloneRoyalty(series.Royalty), nil
}

func (s *Service) tokenViewByID(ctx context.Context, tokenID string) (ports.TokenView, bool, error) {
	token, err := s.Repo.GetToken(ctx, tokenID)
	if err != nil {
		return ports.TokenView{}, false, nil
	}
	series, err := s.Repo.GetSeriesByID(ctx, token.SeriesID)
	if err != nil {
		return ports.TokenView{}, false, err
	}
	return s.tokenView(series, token), true, nil
}

func (s *Service) tokenViews(ctx context.Context, tokens []ports.Token) ([]ports.TokenView, error) {
	views := make([]ports.TokenView, 0, len(tokens))
	for _, token := range tokens {
		series, err := s.Repo.GetSeriesByID(ctx, token.SeriesID)
		if err != nil {
			return nil, err
		}
		views = append(views, s.tokenView(series, token))
	}
	return views, nil
}

func seriesView(series ports.Series) ports.SeriesView {
	metadata := series.Metadata
	metadata.Copies = copySnapshot(series.Metadata.Copies)
	return ports.SeriesView{
		Metadata: metadata,
		OwnerID:  series.OwnerID,
		Royalty:  cloneRoyalty(series.Royalty),
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultViewLimit
	}
	return limit
}
