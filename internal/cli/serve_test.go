package cli

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/brendan.keane/urlquery/internal/config"
	"github.com/brendan.keane/urlquery/internal/testutil"
)

func newServeCommand(ctx context.Context, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("addr", "127.0.0.1:0", "")
	cmd.SetContext(config.WithConfig(ctx, cfg))
	return cmd
}

func TestServeHandler_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	handler := NewServeHandler(zerolog.New(io.Discard))
	cmd := newServeCommand(ctx, config.NewConfig())

	done := make(chan error, 1)
	go func() { done <- handler.Execute(cmd, nil) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		testutil.AssertNoError(t, err, "serve should stop cleanly")
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}

func TestServeHandler_InvalidConfig(t *testing.T) {
	handler := NewServeHandler(zerolog.New(io.Discard))
	cmd := newServeCommand(context.Background(), testutil.NewConfigBuilder().WithFormat("xml").Build())

	err := handler.Execute(cmd, nil)
	testutil.AssertError(t, err, "serve with invalid config")
}
