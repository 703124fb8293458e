package nanosnap_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/arthur-debert/nanosnap/nanosnap"
	"github.com/arthur-debert/nanosnap/nanosnap/store"
	"github.com/arthur-debert/nanosnap/types"
)

// Example_session records a baseline in one run and catches a change in the next
func Example_session() {
	mockFS := store.NewMockFileSystem()
	layoutOpts := nanosnap.WithLayoutOptions(
		store.WithFileSystem(mockFS),
		store.WithFileLockFactory(store.NewMockFileLockFactory()),
	)
	quiet := nanosnap.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	cfg := types.Config{SnapshotPath: "__snapshots__", Version: "1.0.0"}
	ctx := context.Background()

	first, _ := nanosnap.NewSession(cfg, layoutOpts, quiet)
	_ = first.Load(ctx)
	_, _ = first.Snapshot(types.Identity{"TestTotal"}, 42)
	_ = first.Persist(ctx)

	second, _ := nanosnap.NewSession(cfg, layoutOpts, quiet)
	_ = second.Load(ctx)
	_, err := second.Snapshot(types.Identity{"TestTotal"}, 43)

	var mismatch *nanosnap.MismatchError
	if errors.As(err, &mismatch) {
		fmt.Println("mismatch at", mismatch.Key)
	}
	// Output:
	// mismatch at TestTotal 1
}
