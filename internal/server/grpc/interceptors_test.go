package grpcserver

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

type fakeAddr struct{}

func (fakeAddr) Network() string { return "tcp" }
func (fakeAddr) String() string  { return "127.0.0.1:12345" }

var checkInfo = &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

func TestLoggingUnary_LevelsByCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		err   error
		level zapcore.Level
	}{
		{"ok", nil, zap.DebugLevel},
		{"not found", status.Error(codes.NotFound, "unknown service"), zap.WarnLevel},
		{"plain error", errors.New("boom"), zap.WarnLevel},
	}
	for _, tc := range cases {
		core, logs := observer.New(zap.DebugLevel)
		ic := LoggingUnary(zap.New(core))
		ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: fakeAddr{}})

		resp, err := ic(ctx, "req", checkInfo, func(context.Context, any) (any, error) {
			if tc.err != nil {
				return nil, tc.err
			}
			return "ok", nil
		})
		if !errors.Is(err, tc.err) {
			t.Fatalf("%s: want original error, got %v", tc.name, err)
		}
		if tc.err == nil && resp != "ok" {
			t.Fatalf("%s: resp mismatch: %v", tc.name, resp)
		}

		entries := logs.All()
		if len(entries) != 1 || entries[0].Level != tc.level {
			t.Fatalf("%s: want one %v entry, got %+v", tc.name, tc.level, entries)
		}
		if got := entries[0].ContextMap()["peer"]; got != "127.0.0.1:12345" {
			t.Fatalf("%s: peer field = %v", tc.name, got)
		}
	}
}

func TestRecoverUnary_CatchesPanic(t *testing.T) {
	t.Parallel()

	ic := RecoverUnary(zaptest.NewLogger(t))
	_, err := ic(context.Background(), "req", checkInfo, func(context.Context, any) (any, error) {
		panic("oh no")
	})
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Internal {
		t.Fatalf("want codes.Internal, got: %v", err)
	}
}

func TestRecoverUnary_NoPanicPassThrough(t *testing.T) {
	t.Parallel()

	ic := RecoverUnary(zaptest.NewLogger(t))
	resp, err := ic(context.Background(), "req", checkInfo, func(context.Context, any) (any, error) {
		return 42, nil
	})
	if err != nil || resp.(int) != 42 {
		t.Fatalf("unexpected result: %v, %v", resp, err)
	}
}

// stubStream is the minimum grpc.ServerStream the stream interceptors touch.
type stubStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s stubStream) Context() context.Context { return s.ctx }

var watchInfo = &grpc.StreamServerInfo{FullMethod: "/grpc.health.v1.Health/Watch", IsServerStream: true}

func TestLoggingStream_LogsOnEnd(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	ic := LoggingStream(zap.New(core))
	ss := stubStream{ctx: context.Background()}

	err := ic(nil, ss, watchInfo, func(any, grpc.ServerStream) error {
		return status.Error(codes.Canceled, "client went away")
	})
	if status.Code(err) != codes.Canceled {
		t.Fatalf("want Canceled, got %v", err)
	}
	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zap.WarnLevel {
		t.Fatalf("want one warn entry, got %+v", entries)
	}
	if got := entries[0].ContextMap()["method"]; got != watchInfo.FullMethod {
		t.Fatalf("method field = %v", got)
	}
	if _, ok := entries[0].ContextMap()["peer"]; ok {
		t.Fatalf("peer field should be absent without a peer in context")
	}
}

func TestRecoverStream_CatchesPanic(t *testing.T) {
	t.Parallel()

	ic := RecoverStream(zaptest.NewLogger(t))
	err := ic(nil, stubStream{ctx: context.Background()}, watchInfo, func(any, grpc.ServerStream) error {
		panic("oh no")
	})
	if status.Code(err) != codes.Internal {
		t.Fatalf("want codes.Internal, got: %v", err)
	}
}
