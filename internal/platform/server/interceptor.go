package server

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnaryLogger は RPC ごとにメソッド名と結果コード、所要時間を記録します。
func UnaryLogger(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := next(ctx, req)

		code := status.Code(err)
		var ev *zerolog.Event
		switch code {
		case codes.OK:
			ev = logger.Info()
		case codes.Internal, codes.DataLoss, codes.Unknown:
			ev = logger.Error().Err(err)
		default:
			ev = logger.Warn().Err(err)
		}
		ev.Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("latency", time.Since(start)).
			Msg("rpc")

		return resp, err
	}
}

// UnaryRecovery はハンドラのパニックを Internal エラーに変換し、プロセスを落とさないようにします。
func UnaryRecovery(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("method", info.FullMethod).
					Str("panic", fmt.Sprint(r)).
					Msg("rpc panicked")
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()
		return next(ctx, req)
	}
}
