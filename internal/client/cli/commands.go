package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/failvault/internal/client/services"
	"github.com/dmitrijs2005/failvault/internal/client/wallet"
	"github.com/dmitrijs2005/failvault/internal/models"
	"github.com/shopspring/decimal"
)

// Connect asks the wallet for account access.
func (a *App) Connect(ctx context.Context) error {
	acct, err := a.session.Connect(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Connected %s\n", acct.Address.Hex())
	if a.admin.Active() {
		fmt.Fprintln(a.out, "This account is the admin. Run 'admin' to manage records.")
	}
	return nil
}

// List refetches the catalog and prints it with the active filters.
func (a *App) List(ctx context.Context) error {
	if err := a.catalog.Refresh(ctx); err != nil {
		return err
	}
	a.printItems()
	return nil
}

func (a *App) printItems() {
	term, cat := a.catalog.Filters()
	if term != "" || cat != models.CategoryAll {
		fmt.Fprintf(a.out, "Filter: %q in %s\n\n", term, cat)
	}
	renderItems(a.out, a.catalog.Items(), terminalWidth())
}

func (a *App) Search(ctx context.Context, term string) error {
	a.catalog.SetSearch(term)
	a.printItems()
	return nil
}

func (a *App) Category(ctx context.Context, name string) error {
	cat, err := models.ParseFilter(name)
	if err != nil {
		return err
	}
	a.catalog.SetCategory(cat)
	a.printItems()
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	it, err := a.catalog.Get(id)
	if err != nil {
		return fmt.Errorf("record %s: %w", id, err)
	}
	renderRecord(a.out, it)
	return nil
}

// Unlock pays for the record and reveals its findings on success.
func (a *App) Unlock(ctx context.Context, id string) error {
	it, err := a.catalog.Get(id)
	if err != nil {
		return fmt.Errorf("record %s: %w", id, err)
	}

	set, err := a.unlock.Unlock(ctx, it.Record, a.catalog.Entitlements(), func(t services.Transition) {
		switch t.State {
		case services.AwaitingWalletConfirmation:
			fmt.Fprintln(a.out, "Confirm the payment in your wallet...")
		case services.AwaitingChainConfirmation:
			fmt.Fprintf(a.out, "Payment sent (%s), waiting for confirmation...\n", t.Tx.Hex())
		}
	})
	if errors.Is(err, services.ErrAlreadyUnlocked) {
		fmt.Fprintln(a.out, "Already unlocked.")
		return nil
	}
	if err != nil {
		return err
	}

	a.catalog.SetEntitlements(set)
	fmt.Fprintln(a.out, "Unlocked!")
	renderRecord(a.out, services.Item{Record: it.Record, Unlocked: true})
	return nil
}

// Publish reads the publish form and runs the publish flow.
func (a *App) Publish(ctx context.Context) error {
	if a.session.Gateway() == nil {
		return wallet.ErrNoWallet
	}

	title, err := GetSimpleText(a.reader, "Experiment title", a.out)
	if err != nil {
		return err
	}
	abstract, err := GetMultiline(a.reader, "Abstract summary", a.out)
	if err != nil {
		return err
	}
	findings, err := GetMultiline(a.reader, "Locked findings", a.out)
	if err != nil {
		return err
	}

	in := services.PublishInput{Title: title, Abstract: abstract, Findings: findings}

	cats := make([]string, 0, 4)
	for _, c := range models.Categories() {
		cats = append(cats, string(c))
	}
	catText, err := GetSimpleText(a.reader, fmt.Sprintf("Category (%s, empty for %s)", strings.Join(cats, ", "), models.DefaultCategory), a.out)
	if err != nil {
		return err
	}
	if catText != "" {
		if in.Category, err = models.ParseCategory(catText); err != nil {
			return err
		}
	}

	priceText, err := GetSimpleText(a.reader, "Unlock price in ETH (empty for default)", a.out)
	if err != nil {
		return err
	}
	if priceText != "" {
		p, err := decimal.NewFromString(priceText)
		if err != nil {
			return fmt.Errorf("price %q: %w", priceText, err)
		}
		in.Price = decimal.NewNullDecimal(p)
	}

	rec, err := a.publisher.Publish(ctx, in, func(s string) { fmt.Fprintln(a.out, s) })
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Published %s\n", rec.ID)

	if err := a.catalog.Refresh(ctx); err != nil {
		a.logger.Warn(ctx, "catalog refresh after publish", "error", err)
	}
	return nil
}

// Admin signs the admin in (once per token) and prints the record table.
func (a *App) Admin(ctx context.Context) error {
	if !a.admin.Active() {
		return errors.New("admin access requires the allow-listed wallet; run 'connect' first")
	}
	if !a.admin.SignedIn() {
		fmt.Fprintln(a.out, "Sign the login message in your wallet...")
		if err := a.admin.SignIn(ctx); err != nil {
			return fmt.Errorf("admin sign-in: %w", err)
		}
	}

	records, err := a.admin.Records(ctx)
	if err != nil {
		return err
	}
	renderAdminTable(a.out, records, terminalWidth())
	return nil
}

// Delete removes a record after the user confirms.
func (a *App) Delete(ctx context.Context, id string) error {
	if !a.admin.Active() {
		return errors.New("delete requires the allow-listed wallet")
	}
	if err := a.admin.RequestDelete(id); err != nil {
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete record %s? This cannot be undone.", id), a.out)
	if err != nil || !ok {
		a.admin.CancelDelete()
		if err == nil {
			fmt.Fprintln(a.out, "Cancelled.")
		}
		return err
	}

	if !a.admin.SignedIn() {
		if err := a.admin.SignIn(ctx); err != nil {
			a.admin.CancelDelete()
			return fmt.Errorf("admin sign-in: %w", err)
		}
	}

	deleted, err := a.admin.ConfirmDelete(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", deleted)

	if err := a.catalog.Refresh(ctx); err != nil {
		a.logger.Warn(ctx, "catalog refresh after delete", "error", err)
	}
	return nil
}
