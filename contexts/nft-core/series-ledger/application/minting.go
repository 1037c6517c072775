package application

import (
	"context"
	"fmt"
	"strings"

	domainerrors "mintery/contexts/nft-core/series-ledger/domain/errors"
	"mintery/contexts/nft-core/series-ledger/ports"
)

// MintSeries creates the next edition of a series. Only the series owner may
// mint; the cap check and the mint are atomic because entry points run to
// completion without interleaving.
func (s *Service) MintSeries(
	ctx context.Context,
	caller ports.Caller,
	input ports.MintInput,
) (ports.TokenView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return ports.TokenView{}, err
	}

	receiverID := strings.TrimSpace(input.ReceiverID)
	if receiverID == "" {
		return ports.TokenView{}, domainerrors.ErrInvalidInput
	}
	series, err := s.Repo.GetSeriesByTitle(ctx, strings.TrimSpace(input.SeriesTitle))
	if err != nil {
		return ports.TokenView{}, domainerrors.ErrSeriesNotFound
	}
	if caller.AccountID != series.OwnerID {
		return ports.TokenView{}, domainerrors.ErrUnauthorized
	}
	if series.Metadata.Copies != nil && series.MintedCount == *series.Metadata.Copies {
		return ports.TokenView{}, domainerrors.ErrSupplyExhausted
	}
	if caller.Deposit.Cmp(storageCostToken) < 0 {
		return ports.TokenView{}, domainerrors.ErrInsufficientDeposit
	}

	if err := s.Bank.Transfer(ctx, caller.AccountID, s.ContractID, storageCostToken); err != nil {
		return ports.TokenView{}, err
	}

	edition := series.MintedCount + 1
	token := ports.Token{
		TokenID:        fmt.Sprintf("%d%s%d", series.SeriesID, TokenDelimiter, edition),
		SeriesID:       series.SeriesID,
		SeriesTitle:    series.Title,
		OwnerID:        receiverID,
		EditionIndex:   edition,
		CopiesAtMint:   copySnapshot(series.Metadata.Copies),
		Approvals:      map[string]uint64{},
		NextApprovalID: 1,
		IssuedAt:       s.now(),
	}
	if err := s.Repo.CreateToken(ctx, token); err != nil {
		return ports.TokenView{}, err
	}
	series.MintedCount = edition
	if err := s.Repo.UpdateSeries(ctx, series); err != nil {
		return ports.TokenView{}, err
	}

	s.appendTokenEvent(ctx, "nft_mint", token.TokenID, map[string]any{
		"owner_id":  receiverID,
		"token_ids": []string{token.TokenID},
	})
	resolveLogger(s.Logger).Info("token minted",
		"event", "nft_token_minted",
		"module", "nft-core/series-ledger",
		"layer", "application",
		"token_id", token.TokenID,
		"series_title", series.Title,
		"receiver_id", receiverID,
	)
	return s.tokenView(series, token), nil
}

// FormatTokenTitle renders the wallet-facing edition title, e.g.
// "dog — 2/10". Series without a copies cap keep the bare series title.
func FormatTokenTitle(seriesTitle string, edition uint64, copies *uint64) string {
	if copies == nil {
		return seriesTitle
	}
	return fmt.Sprintf("%s%s%d%s%d", seriesTitle, TitleDelimiter, edition, EditionDelimiter, *copies)
}

func (s *Service) tokenView(series ports.Series, token ports.Token) ports.TokenView {
	return ports.TokenView{
		TokenID:     token.TokenID,
		OwnerID:     token.OwnerID,
		SeriesTitle: series.Title,
		Title:       FormatTokenTitle(series.Title, token.EditionIndex, token.CopiesAtMint),
		Media:       series.Metadata.Media,
		Copies:      copySnapshot(token.CopiesAtMint),
		Approvals:   cloneApprovals(token.Approvals),
	}
}

func copySnapshot(copies *uint64) *uint64 {
	if copies == nil {
		return nil
	}
	v := *copies
	return &v
}
