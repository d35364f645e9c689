package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/vk/dispatchgo/internal/ctxlog"
)

// Context returns a context carrying a debug-level text logger that writes
// into the returned buffer. Set DISPATCHGO_TEST_LOGS=true to have the
// captured output printed when the test ends.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()

	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() {
		if os.Getenv("DISPATCHGO_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return ctxlog.WithLogger(context.Background(), logger), buf
}
