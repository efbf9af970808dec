package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"autoprotocol/internal/blobstore"
	"autoprotocol/internal/capture"
)

const probeName = "preflight-probe"

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStore writes, reads back and deletes a scratch blob.
func CheckStore(ctx context.Context, backend string, store blobstore.Store) Result {
	name := fmt.Sprintf("Blob store (%s)", backend)
	payload := []byte("ok")
	if err := store.Write(ctx, blobstore.ScopeObjects, probeName, payload); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("write failed: %v", err)}
	}
	defer func() { _ = store.Delete(ctx, blobstore.ScopeObjects, probeName) }()

	got, err := store.Read(ctx, blobstore.ScopeObjects, probeName)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("read failed: %v", err)}
	}
	if string(got) != string(payload) {
		return Result{Name: name, Detail: "read back different content"}
	}
	return Result{Name: name, Passed: true, Detail: "read/write ok"}
}

// CheckPending verifies that every pending capture record decodes. Leftover
// records are reported since they will be folded into the next protocol.
func CheckPending(ctx context.Context, store blobstore.Store) Result {
	const name = "Pending records"
	records, err := capture.Pending(ctx, store)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if len(records) == 0 {
		return Result{Name: name, Passed: true, Detail: "none"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d waiting for 'autoprotocol protocol build'", len(records))}
}
