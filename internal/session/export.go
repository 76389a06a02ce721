package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ExportName is the file name of an exported ledger.
	ExportName = "fintrack_transactions.csv"
	// ExportMIMEType is the media type of an exported ledger.
	ExportMIMEType = "text/csv"
)

// Export is a CSV artifact ready to hand to the user.
type Export struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Deliverer hands an Export to the user, for example by saving it.
type Deliverer interface {
	Deliver(ctx context.Context, e Export) error
}

// FileDeliverer saves exports into Dir.
type FileDeliverer struct {
	Dir string
}

// Path is where an export named name ends up.
func (d FileDeliverer) Path(name string) string {
	return filepath.Join(d.Dir, name)
}

func (d FileDeliverer) Deliver(ctx context.Context, e Export) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	if err := os.WriteFile(d.Path(e.Name), e.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", e.Name, err)
	}
	return nil
}
