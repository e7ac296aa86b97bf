package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

// Approver stands in for the wallet confirmation dialogs.
type Approver interface {
	ApproveAccounts(ctx context.Context, accounts []common.Address) (bool, error)
	ApproveTransaction(ctx context.Context, tx domain.TxRequest) (bool, error)
}

// AutoApprover approves everything. Use it for scripted runs and the web front end.
type AutoApprover struct{}

func (AutoApprover) ApproveAccounts(context.Context, []common.Address) (bool, error) {
	return true, nil
}

func (AutoApprover) ApproveTransaction(context.Context, domain.TxRequest) (bool, error) {
	return true, nil
}

// PromptApprover asks on the terminal before sharing accounts or signing.
type PromptApprover struct {
	// UnitSymbol labels transaction values; defaults to domain.DefaultUnitSymbol.
	UnitSymbol string
}

func (p PromptApprover) ApproveAccounts(ctx context.Context, accounts []common.Address) (bool, error) {
	hexes := make([]string, len(accounts))
	for i, a := range accounts {
		hexes[i] = a.Hex()
	}
	return confirm(ctx, "Connect account?", strings.Join(hexes, "\n"))
}

func (p PromptApprover) ApproveTransaction(ctx context.Context, tx domain.TxRequest) (bool, error) {
	return confirm(ctx, fmt.Sprintf("Sign %s?", tx.Method), describeTx(tx, p.UnitSymbol))
}

func describeTx(tx domain.TxRequest, unit string) string {
	if unit == "" {
		unit = domain.DefaultUnitSymbol
	}
	return fmt.Sprintf("from:  %s\nto:    %s\nvalue: %s %s",
		tx.From.Hex(), tx.To.Hex(), domain.FromBaseUnits(tx.ValueOrZero()), unit)
}

func confirm(ctx context.Context, title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Approve").
				Negative("Reject").
				Value(&ok),
		),
	).RunWithContext(ctx)
	return confirmResult(ok, err)
}

// confirmResult treats an aborted dialog as a rejection.
func confirmResult(ok bool, err error) (bool, error) {
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "confirm dialog")
	}
	return ok, nil
}
