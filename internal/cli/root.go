// Package cli は hrctl コマンドを提供します。
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ogurasousui/hr-lifecycle-engine/internal/adapters/grpc/handler"
)

// Caller は LifecycleService の 1 メソッドを呼び出します。
type Caller interface {
	Call(ctx context.Context, method string, req map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// Dialer は接続先アドレスから Caller を生成します。
type Dialer func(addr string) (Caller, io.Closer, error)

// RootOptions は全サブコマンド共通のフラグです。
type RootOptions struct {
	Addr       string
	ConfigPath string
	Actor      string
	Timeout    time.Duration

	dial Dialer
}

// NewRootCommand は hrctl のルートコマンドを生成します。
func NewRootCommand() *cobra.Command {
	return newRootCommand(dialGRPC)
}

func newRootCommand(dial Dialer) *cobra.Command {
	opts := &RootOptions{dial: dial}

	cmd := &cobra.Command{
		Use:           "hrctl",
		Short:         "HR lifecycle engine control tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Addr, "addr", envOr("HR_SERVER_ADDR", "localhost:50051"), "gRPC server address")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	cmd.PersistentFlags().StringVar(&opts.Actor, "actor", os.Getenv("HR_ACTOR_ID"), "acting manager or admin id")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "per-call timeout")

	cmd.AddCommand(NewMigrateCommand(opts))
	for _, c := range transitionCommands(opts) {
		cmd.AddCommand(c)
	}
	cmd.AddCommand(NewNotificationsCommand(opts))

	return cmd
}

func dialGRPC(addr string) (Caller, io.Closer, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return handler.NewLifecycleClient(conn), conn, nil
}

// invoke は 1 回の RPC を実行し、応答を JSON で出力します。
func (o *RootOptions) invoke(cmd *cobra.Command, method string, req map[string]any) error {
	caller, closer, err := o.dial(o.Addr)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), o.Timeout)
	defer cancel()

	resp, err := caller.Call(ctx, method, req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	out, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
