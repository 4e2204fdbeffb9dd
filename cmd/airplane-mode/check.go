package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xela07ax/airplane-mode/internal/domain"
	"github.com/xela07ax/airplane-mode/internal/engine"
)

var (
	checkFetch   bool
	checkGRPC    bool
	checkTimeout time.Duration
)

var checkCmd = &cobra.Command{
	Use:   "check <url|grpc-target>",
	Short: "Show what the gate decides for a URL, optionally making the request",
	Example: `  airplane-mode check https://api.wordpress.org/
  airplane-mode check --fetch http://localhost:8080/health
  airplane-mode check --grpc dns:///payments.internal:443`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGate(cmd.Context(), func(a *app) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
			defer cancel()

			out := cmd.OutOrStdout()
			target := args[0]

			if checkGRPC {
				return checkGRPCTarget(ctx, out, a.gate, target)
			}

			fmt.Fprintf(out, "mode:  %s\n", a.gate.Mode(ctx))
			fmt.Fprintf(out, "local: %t\n", a.gate.IsLocal(target))
			if err := a.gate.DecideNetwork(ctx, target); err != nil {
				fmt.Fprintf(out, "decision: DENY (%v)\n", err)
			} else {
				fmt.Fprintln(out, "decision: ALLOW")
			}

			if !checkFetch {
				return nil
			}
			return fetch(ctx, out, a.gate, target)
		})
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkFetch, "fetch", false, "perform a GET through the gated HTTP client")
	checkCmd.Flags().BoolVar(&checkGRPC, "grpc", false, "treat the argument as a gRPC target and call grpc.health.v1")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 10*time.Second, "request timeout")
	rootCmd.AddCommand(checkCmd)
}

func fetch(ctx context.Context, out io.Writer, gate engine.NetworkDecider, target string) error {
	client := engine.NewHTTPClient(gate, nil, checkTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, domain.ErrAirplaneModeEnabled) {
			fmt.Fprintln(out, "fetch: blocked before leaving the process")
			return nil
		}
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	n, _ := io.Copy(io.Discard, resp.Body)
	fmt.Fprintf(out, "fetch: %s (%d bytes)\n", resp.Status, n)
	return nil
}

func checkGRPCTarget(ctx context.Context, out io.Writer, gate engine.NetworkDecider, target string) error {
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(engine.UnaryClientInterceptor(gate)),
		grpc.WithStreamInterceptor(engine.StreamClientInterceptor(gate)),
	)
	if err != nil {
		return fmt.Errorf("grpc client: %w", err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		fmt.Fprintf(out, "grpc: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "grpc: %s\n", resp.GetStatus())
	return nil
}
