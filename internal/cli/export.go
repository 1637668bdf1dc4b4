package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/vinony/internal/common"
	"github.com/dmitrijs2005/vinony/internal/snapshot"
)

// Export writes every collection to path, encrypted with a passphrase.
func (a *App) Export(ctx context.Context, path string) error {
	pass, err := getPassword("Export passphrase", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)
	if len(pass) == 0 {
		return common.NewValidationError("passphrase", "is required")
	}

	snap, err := a.store.Capture(ctx)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := snapshot.Seal(f, snap, pass); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	a.println("Exported to", path)
	return nil
}

// Import replaces every collection with the content of an export file.
func (a *App) Import(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	pass, err := getPassword("Import passphrase", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)

	snap, err := snapshot.Open(f, pass)
	if err != nil {
		return err
	}
	if err := a.store.Restore(ctx, snap); err != nil {
		return err
	}
	if _, err := a.conv.EnsureThread(ctx); err != nil {
		return err
	}

	a.println("Imported from", path)
	return nil
}
