// Package blob defines the contract for the asset store backing the file
// gate. Assets are keyed by (kind, filename); the engine never touches raw
// storage paths directly.
package blob

import (
	"context"
	"io"
)

// Kind names a storage area. Contract kinds are per-tier subdirectories.
type Kind string

const (
	KindPreview  Kind = "previews"
	KindCover    Kind = "covers"
	KindLossless Kind = "lossless"
	KindStems    Kind = "stems"
)

// ContractKind returns the storage area for a license tier's contract
// documents, e.g. "contracts/premium".
func ContractKind(tier string) Kind {
	return Kind("contracts/" + tier)
}

// Ref is an open handle to a stored asset. Callers own the reader and must
// close it.
type Ref struct {
	Reader      io.ReadCloser
	Name        string
	Size        int64
	ContentType string
}

func (r *Ref) Close() error {
	if r == nil || r.Reader == nil {
		return nil
	}
	return r.Reader.Close()
}

type Store interface {
	// Open returns a handle to the named asset, or an error satisfying
	// IsNotExist when the asset is absent.
	Open(ctx context.Context, kind Kind, name string) (*Ref, error)
	Put(ctx context.Context, kind Kind, name string, r io.Reader) error
	Delete(ctx context.Context, kind Kind, name string) error
	// List returns the filenames present under a kind, in lexical order.
	List(ctx context.Context, kind Kind) ([]string, error)
}
