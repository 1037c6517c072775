package application

import (
	"context"
	"strings"

	"github.com/gaze-network/uint128"

	domainerrors "mintery/contexts/nft-core/series-ledger/domain/errors"
	"mintery/contexts/nft-core/series-ledger/ports"
)

// Transfer moves token ownership. The caller must be the current owner or
// hold an approval on the token (matching the approval id when one is
// supplied). All approvals are cleared on transfer; approval ids are never
// reused afterwards because the per-token counter keeps climbing.
func (s *Service) Transfer(ctx context.Context, caller ports.Caller, input ports.TransferInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return err
	}
	_, _, err := s.transferLocked(ctx, caller, input.ReceiverID, input.TokenID, input.ApprovalID)
	return err
}

// TransferPayout transfers via an approval and, when a balance is supplied,
// returns the royalty split for that balance: each non-seller royalty account
// gets balance*bps/10000, the seller gets the remainder.
func (s *Service) TransferPayout(
	ctx context.Context,
	caller ports.Caller,
	input ports.TransferPayoutInput,
) (ports.Payout, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return ports.Payout{}, "", err
	}

	approvalID := input.ApprovalID
	token, previousOwnerID, err := s.transferLocked(ctx, caller, input.ReceiverID, input.TokenID, &approvalID)
	if err != nil {
		return ports.Payout{}, "", err
	}
	if input.Balance == nil {
		return ports.Payout{}, previousOwnerID, nil
	}

	series, err := s.Repo.GetSeriesByID(ctx, token.SeriesID)
	if err != nil {
		return ports.Payout{}, "", domainerrors.ErrSeriesNotFound
	}
	if input.MaxLenPayout != nil && uint32(len(series.Royalty)) > *input.MaxLenPayout {
		return ports.Payout{}, "", domainerrors.ErrInvalidInput
	}

	payout, err := splitRoyalty(*input.Balance, series.Royalty, previousOwnerID)
	if err != nil {
		return ports.Payout{}, "", err
	}
	return payout, previousOwnerID, nil
}

func (s *Service) transferLocked(
	ctx context.Context,
	caller ports.Caller,
	receiverID string,
	tokenID string,
	approvalID *uint64,
) (ports.Token, string, error) {
	if !atLeastOneYocto(caller.Deposit) {
		return ports.Token{}, "", domainerrors.ErrInsufficientDeposit
	}
	receiverID = strings.TrimSpace(receiverID)
	if receiverID == "" {
		return ports.Token{}, "", domainerrors.ErrInvalidInput
	}

	token, err := s.Repo.GetToken(ctx, tokenID)
	if err != nil {
		return ports.Token{}, "", domainerrors.ErrTokenNotFound
	}
	if receiverID == token.OwnerID {
		return ports.Token{}, "", domainerrors.ErrInvalidInput
	}
	if caller.AccountID != token.OwnerID {
		grantedID, ok := token.Approvals[caller.AccountID]
		if !ok {
			return ports.Token{}, "", domainerrors.ErrUnauthorized
		}
		if approvalID != nil && *approvalID != grantedID {
			return ports.Token{}, "", domainerrors.ErrUnauthorized
		}
	}

	previousOwnerID := token.OwnerID
	token.OwnerID = receiverID
	token.Approvals = map[string]uint64{}
	if err := s.Repo.UpdateToken(ctx, token); err != nil {
		return ports.Token{}, "", err
	}

	s.appendTokenEvent(ctx, "nft_transfer", token.TokenID, map[string]any{
		"old_owner_id": previousOwnerID,
		"new_owner_id": receiverID,
		"token_ids":    []string{token.TokenID},
	})
	resolveLogger(s.Logger).Info("token transferred",
		"event", "nft_token_transferred",
		"module", "nft-core/series-ledger",
		"layer", "application",
		"token_id", token.TokenID,
		"old_owner_id", previousOwnerID,
		"new_owner_id", receiverID,
	)
	return token, previousOwnerID, nil
}

// Approve grants accountID the next approval id for the token and, when a
// message is attached, forwards it to the grantee. The approval commits and
// the lock is released before the notice leaves the contract, so the
// receiver may call back into the ledger; delivery failure is logged for the
// caller to retry, never rolled back.
func (s *Service) Approve(ctx context.Context, caller ports.Caller, input ports.ApproveInput) (uint64, error) {
	accountID := strings.TrimSpace(input.AccountID)
	approvalID, notice, err := s.approveLocked(ctx, caller, accountID, input)
	if err != nil {
		return 0, err
	}
	if input.Msg != nil {
		s.forwardApproval(ctx, notice, accountID)
	}
	return approvalID, nil
}

func (s *Service) approveLocked(
	ctx context.Context,
	caller ports.Caller,
	accountID string,
	input ports.ApproveInput,
) (uint64, ports.ApprovalNotice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return 0, ports.ApprovalNotice{}, err
	}

	if accountID == "" {
		return 0, ports.ApprovalNotice{}, domainerrors.ErrInvalidInput
	}
	token, err := s.Repo.GetToken(ctx, input.TokenID)
	if err != nil {
		return 0, ports.ApprovalNotice{}, domainerrors.ErrTokenNotFound
	}
	if caller.AccountID != token.OwnerID {
		return 0, ports.ApprovalNotice{}, domainerrors.ErrUnauthorized
	}
	if caller.Deposit.Cmp(storageCostApproval) < 0 {
		return 0, ports.ApprovalNotice{}, domainerrors.ErrInsufficientDeposit
	}

	if err := s.Bank.Transfer(ctx, caller.AccountID, s.ContractID, storageCostApproval); err != nil {
		return 0, ports.ApprovalNotice{}, err
	}

	approvalID := token.NextApprovalID
	if approvalID == 0 {
		approvalID = 1
	}
	if token.Approvals == nil {
		token.Approvals = map[string]uint64{}
	}
	token.Approvals[accountID] = approvalID
	token.NextApprovalID = approvalID + 1
	if err := s.Repo.UpdateToken(ctx, token); err != nil {
		return 0, ports.ApprovalNotice{}, err
	}

	resolveLogger(s.Logger).Info("approval granted",
		"event", "nft_approval_granted",
		"module", "nft-core/series-ledger",
		"layer", "application",
		"token_id", token.TokenID,
		"account_id", accountID,
		"approval_id", approvalID,
	)

	notice := ports.ApprovalNotice{
		NFTContractID: s.ContractID,
		TokenID:       token.TokenID,
		OwnerID:       token.OwnerID,
		SignerID:      caller.Signer(),
		ApprovalID:    approvalID,
	}
	if input.Msg != nil {
		notice.Msg = *input.Msg
	}
	return approvalID, notice, nil
}

func (s *Service) forwardApproval(ctx context.Context, notice ports.ApprovalNotice, accountID string) {
	logger := resolveLogger(s.Logger)
	if s.Receiver == nil {
		logger.Warn("approval message dropped, no receiver wired",
			"event", "nft_approval_forward_skipped",
			"module", "nft-core/series-ledger",
			"layer", "application",
			"token_id", notice.TokenID,
			"account_id", accountID,
		)
		return
	}
	if err := s.Receiver.OnApprove(ctx, notice); err != nil {
		logger.Warn("approval message delivery failed",
			"event", "nft_approval_forward_failed",
			"module", "nft-core/series-ledger",
			"layer", "application",
			"token_id", notice.TokenID,
			"account_id", accountID,
			"approval_id", notice.ApprovalID,
			"error", err.Error(),
		)
	}
}

// Revoke removes one account's approval. Revoking an absent approval is a
// no-op.
func (s *Service) Revoke(ctx context.Context, caller ports.Caller, tokenID string, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return err
	}
	token, err := s.ownerGuard(ctx, caller, tokenID)
	if err != nil {
		return err
	}
	if _, ok := token.Approvals[accountID]; !ok {
		return nil
	}
	delete(token.Approvals, accountID)
	return s.Repo.UpdateToken(ctx, token)
}

func (s *Service) RevokeAll(ctx context.Context, caller ports.Caller, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireState(ctx); err != nil {
		return err
	}
	token, err := s.ownerGuard(ctx, caller, tokenID)
	if err != nil {
		return err
	}
	if len(token.Approvals) == 0 {
		return nil
	}
	token.Approvals = map[string]uint64{}
	return s.Repo.UpdateToken(ctx, token)
}

func (s *Service) IsApproved(ctx context.Context, tokenID string, accountID string, approvalID *uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.Repo.GetToken(ctx, tokenID)
	if err != nil {
		return false, domainerrors.ErrTokenNotFound
	}
	grantedID, ok := token.Approvals[accountID]
	if !ok {
		return false, nil
	}
	if approvalID != nil {
		return *approvalID == grantedID, nil
	}
	return true, nil
}

func (s *Service) ownerGuard(ctx context.Context, caller ports.Caller, tokenID string) (ports.Token, error) {
	if !atLeastOneYocto(caller.Deposit) {
		return ports.Token{}, domainerrors.ErrInsufficientDeposit
	}
	token, err := s.Repo.GetToken(ctx, tokenID)
	if err != nil {
		return ports.Token{}, domainerrors.ErrTokenNotFound
	}
	if caller.AccountID != token.OwnerID {
		return ports.Token{}, domainerrors.ErrUnauthorized
	}
	return token, nil
}

func splitRoyalty(
	balance uint128.Uint128,
	royalty map[string]uint32,
	sellerID string,
) (ports.Payout, error) {
	payout := ports.Payout{Payout: make(map[string]uint128.Uint128, len(royalty)+1)}
	total := uint128.Zero
	for accountID, bps := range royalty {
		if accountID == sellerID {
			continue
		}
		product, overflow := balance.MulOverflow(uint128.From64(uint64(bps)))
		if overflow {
			return ports.Payout{}, domainerrors.ErrInvalidInput
		}
		share := product.Div64(royaltyDenominator)
		// royalty sums are capped at 10000 bps, so total never exceeds balance
		payout.Payout[accountID] = share
		total = total.Add(share)
	}
	payout.Payout[sellerID] = balance.Sub(total)
	return payout, nil
}
