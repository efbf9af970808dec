package protocol

import (
	"context"
	"fmt"
	"slices"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/textutil"
)

// List returns stored protocol names in ascending order.
func List(ctx context.Context, blobs blobstore.Store) ([]string, error) {
	list, err := blobs.List(ctx, blobstore.ScopeProtocols)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list))
	for _, b := range list {
		if textutil.HasExtension(b.Name, Extension) {
			names = append(names, b.Name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Load reads and parses a stored protocol. The extension may be omitted.
func Load(ctx context.Context, blobs blobstore.Store, name string) (Document, error) {
	fileName := textutil.EnsureExtension(name, Extension)
	data, err := blobs.Read(ctx, blobstore.ScopeProtocols, fileName)
	if err != nil {
		return Document{}, err
	}
	doc, err := Parse(string(data))
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", fileName, err)
	}
	return doc, nil
}

// Delete removes a stored protocol.
func Delete(ctx context.Context, blobs blobstore.Store, name string) error {
	return blobs.Delete(ctx, blobstore.ScopeProtocols, textutil.EnsureExtension(name, Extension))
}
