package engine

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xela07ax/airplane-mode/internal/domain"
)

// UnaryClientInterceptor проверяет цель соединения перед каждым unary вызовом.
func UnaryClientInterceptor(d NetworkDecider) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		if err := d.DecideNetwork(ctx, grpcTargetURL(cc.Target())); err != nil {
			return toStatus(err)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// StreamClientInterceptor: то же для потоковых вызовов.
func StreamClientInterceptor(d NetworkDecider) grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		if err := d.DecideNetwork(ctx, grpcTargetURL(cc.Target())); err != nil {
			return nil, toStatus(err)
		}
		return streamer(ctx, desc, cc, method, opts...)
	}
}

// grpcTargetURL приводит цель gRPC к URL, понятному проверке локальности.
// "dns:///host:443" и "dns://resolver/host:443" дают "grpc://host:443".
// Unix-сокеты хоста не имеют и считаются локальными.
func grpcTargetURL(target string) string {
	if strings.HasPrefix(target, "unix:") || strings.HasPrefix(target, "unix-abstract:") {
		return ""
	}
	if i := strings.Index(target, "://"); i >= 0 {
		rest := target[i+3:]
		if j := strings.Index(rest, "/"); j >= 0 {
			rest = rest[j+1:]
		}
		target = rest
	}
	if target == "" {
		return ""
	}
	return "grpc://" + target
}

func toStatus(err error) error {
	var be *domain.BlockedError
	if errors.As(err, &be) {
		return status.Error(codes.PermissionDenied, be.Message)
	}
	return status.Error(codes.PermissionDenied, err.Error())
}
