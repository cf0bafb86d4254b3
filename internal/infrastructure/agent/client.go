package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"

	"github.com/MarinaBrowser/marina/shell/internal/domain/shell"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/logging"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/resilience"
	"github.com/MarinaBrowser/marina/shell/internal/shared/errs"
	pb "github.com/MarinaBrowser/marina/shell/proto/agent"
)

// Recorder receives agent call metrics. A nil Recorder disables recording.
type Recorder interface {
	RecordAgentCall(method, status string, duration time.Duration)
	RecordAgentError(method, code string)
}

// Client wraps the gRPC connection to the command-execution service with a
// circuit breaker and adapts its answers to shell actions.
type Client struct {
	conn    *grpc.ClientConn
	client  pb.AgentServiceClient
	addr    string
	breaker *resilience.Breaker
	log     *logging.Logger
	rec     Recorder
}

var _ shell.Agent = (*Client)(nil)

// New creates an agent client with proper connection management. The
// connection is lazy: the first call establishes the transport. Extra dial
// options (tracing interceptors and the like) are appended after the
// defaults.
func New(addr string, log *logging.Logger, rec Recorder, extra ...grpc.DialOption) (*Client, error) {
	if log == nil {
		log = logging.NewNop()
	}
	log = log.Named("agent")

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		// Keepalive tuned to detect broken connections without tripping
		// the server's ping policing.
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                60 * time.Second,
			Timeout:             20 * time.Second,
			PermitWithoutStream: false,
		}),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(10*1024*1024),
			grpc.MaxCallSendMsgSize(10*1024*1024),
		),
	}
	opts = append(opts, extra...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent client: %w", err)
	}

	breaker := resilience.New("agent", resilience.Config{
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		TripAfter:   5,
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("agent breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		conn:    conn,
		client:  pb.NewAgentServiceClient(conn),
		addr:    addr,
		breaker: breaker,
		log:     log,
		rec:     rec,
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// BreakerState reports the circuit breaker state for diagnostics.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// Execute sends a command to the agent and maps the response onto a shell
// action. The caller's context bounds the call end to end; command execution
// can legitimately take a while, so no extra deadline is layered on here.
func (c *Client) Execute(ctx context.Context, text, currentURL string) (shell.Action, error) {
	start := time.Now()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.Execute(ctx, &pb.ExecuteRequest{
			Text:       text,
			CurrentUrl: currentURL,
		})
	})

	if err == resilience.ErrCircuitOpen {
		c.record("execute", "unavailable", start)
		c.recordError("execute", "circuit_open")
		return shell.Action{}, errs.New(errs.InvalidState, "agent unavailable: circuit breaker open")
	}
	if err != nil {
		c.record("execute", "error", start)
		c.recordError("execute", status.Code(err).String())
		return shell.Action{}, fmt.Errorf("agent execute: %w", err)
	}

	action, err := toAction(result.(*pb.ExecuteResponse))
	if err != nil {
		c.record("execute", "error", start)
		c.recordError("execute", "bad_action")
		return shell.Action{}, err
	}

	c.record("execute", "ok", start)
	return action, nil
}

// toAction validates an agent response and converts it to a shell action.
// Responses that name an action but omit its operand are rejected rather
// than passed through for the shell to trip over.
func toAction(resp *pb.ExecuteResponse) (shell.Action, error) {
	kind := shell.ActionKind(resp.Kind)
	if resp.Kind == "" {
		kind = shell.ActionNone
	}

	switch kind {
	case shell.ActionNone:
		return shell.Action{Kind: shell.ActionNone}, nil
	case shell.ActionNavigate:
		if resp.Url == "" {
			return shell.Action{}, errs.New(errs.InvalidState, "agent returned navigate without a url")
		}
		return shell.Action{Kind: kind, URL: resp.Url}, nil
	case shell.ActionCreateTab:
		// An empty URL is fine here; the shell opens the home page.
		return shell.Action{Kind: kind, URL: resp.Url}, nil
	case shell.ActionSwitchTab:
		if resp.TabId == "" {
			return shell.Action{}, errs.New(errs.InvalidState, "agent returned switch_tab without a tab id")
		}
		return shell.Action{Kind: kind, TabID: resp.TabId}, nil
	default:
		return shell.Action{}, errs.New(errs.InvalidState, "agent returned unknown action %q", resp.Kind)
	}
}

func (c *Client) record(method, result string, start time.Time) {
	if c.rec == nil {
		return
	}
	c.rec.RecordAgentCall(method, result, time.Since(start))
}

func (c *Client) recordError(method, code string) {
	if c.rec == nil {
		return
	}
	c.rec.RecordAgentError(method, code)
}
