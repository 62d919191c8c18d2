package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"bondmc/internal/storage"
)

var errNoDatabase = errors.New("database not configured; set database.dsn to use the bond catalog")

// ListBonds prints the catalogued bonds.
func (a *App) ListBonds(ctx context.Context, opts ListOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errNoDatabase
	}
	defer closeStore()

	return writeBonds(ctx, a.Out, store, opts.Limit)
}

// AddBond inserts or replaces a catalogued bond.
func (a *App) AddBond(ctx context.Context, rec storage.BondRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errNoDatabase
	}
	defer closeStore()

	if err := store.UpsertBond(ctx, rec); err != nil {
		return err
	}
	a.Logger.Info().Str("code", rec.Code).Msg("bond saved")
	return nil
}

func writeBonds(ctx context.Context, out io.Writer, catalog storage.BondCatalog, limit int) error {
	bonds, err := catalog.ListBonds(ctx, limit)
	if err != nil {
		return err
	}
	if len(bonds) == 0 {
		fmt.Fprintln(out, "no bonds found")
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Code\tFreq\tCoupon%\tFace\tYears\tAdded (UTC)\tDescription")
	for _, b := range bonds {
		fmt.Fprintf(
			writer,
			"%s\t%d\t%s\t%s\t%d\t%s\t%s\n",
			b.Code,
			b.PaymentFrequency,
			b.CouponRate.Shift(2).StringFixed(3),
			b.FaceValue.StringFixed(2),
			b.YearsRemaining,
			b.CreatedAt.UTC().Format(time.RFC3339),
			b.Description,
		)
	}
	return writer.Flush()
}
