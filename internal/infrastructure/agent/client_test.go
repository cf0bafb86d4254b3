package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MarinaBrowser/marina/shell/internal/domain/shell"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/logging"
	"github.com/MarinaBrowser/marina/shell/internal/infrastructure/resilience"
	"github.com/MarinaBrowser/marina/shell/internal/shared/errs"
	pb "github.com/MarinaBrowser/marina/shell/proto/agent"
)

type fakeService struct {
	mu    sync.Mutex
	reqs  []*pb.ExecuteRequest
	resp  *pb.ExecuteResponse
	err   error
	calls int
}

func (f *fakeService) Execute(ctx context.Context, in *pb.ExecuteRequest, opts ...grpc.CallOption) (*pb.ExecuteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.reqs = append(f.reqs, in)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordedCall struct {
	method string
	result string
}

type recordedError struct {
	method string
	code   string
}

type countingRecorder struct {
	mu     sync.Mutex
	calls  []recordedCall
	errors []recordedError
}

func (r *countingRecorder) RecordAgentCall(method, result string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordedCall{method, result})
}

func (r *countingRecorder) RecordAgentError(method, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, recordedError{method, code})
}

func testClient(svc pb.AgentServiceClient, rec Recorder, cfg resilience.Config) *Client {
	return &Client{
		client:  svc,
		addr:    "test",
		breaker: resilience.New("agent-test", cfg),
		log:     logging.NewNop(),
		rec:     rec,
	}
}

func TestExecuteMapsActions(t *testing.T) {
	tests := []struct {
		name     string
		resp     *pb.ExecuteResponse
		want     shell.Action
		wantCode errs.Code
	}{
		{
			name: "navigate",
			resp: &pb.ExecuteResponse{Kind: "navigate", Url: "https://example.com"},
			want: shell.Action{Kind: shell.ActionNavigate, URL: "https://example.com"},
		},
		{
			name: "create tab with url",
			resp: &pb.ExecuteResponse{Kind: "create_tab", Url: "https://example.com"},
			want: shell.Action{Kind: shell.ActionCreateTab, URL: "https://example.com"},
		},
		{
			name: "create tab without url opens home",
			resp: &pb.ExecuteResponse{Kind: "create_tab"},
			want: shell.Action{Kind: shell.ActionCreateTab},
		},
		{
			name: "switch tab",
			resp: &pb.ExecuteResponse{Kind: "switch_tab", TabId: "tab_1"},
			want: shell.Action{Kind: shell.ActionSwitchTab, TabID: "tab_1"},
		},
		{
			name: "explicit none",
			resp: &pb.ExecuteResponse{Kind: "none"},
			want: shell.Action{Kind: shell.ActionNone},
		},
		{
			name: "empty kind means none",
			resp: &pb.ExecuteResponse{},
			want: shell.Action{Kind: shell.ActionNone},
		},
		{
			name:     "navigate without url is rejected",
			resp:     &pb.ExecuteResponse{Kind: "navigate"},
			wantCode: errs.InvalidState,
		},
		{
			name:     "switch tab without id is rejected",
			resp:     &pb.ExecuteResponse{Kind: "switch_tab"},
			wantCode: errs.InvalidState,
		},
		{
			name:     "unknown kind is rejected",
			resp:     &pb.ExecuteResponse{Kind: "reticulate"},
			wantCode: errs.InvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(&fakeService{resp: tt.resp}, nil, resilience.Config{})

			got, err := c.Execute(context.Background(), "do the thing", "https://start.example")
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errs.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecuteCarriesRequestFields(t *testing.T) {
	svc := &fakeService{resp: &pb.ExecuteResponse{Kind: "none"}}
	c := testClient(svc, nil, resilience.Config{})

	_, err := c.Execute(context.Background(), "open the news", "https://current.example/page")
	require.NoError(t, err)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	require.Len(t, svc.reqs, 1)
	assert.Equal(t, "open the news", svc.reqs[0].Text)
	assert.Equal(t, "https://current.example/page", svc.reqs[0].CurrentUrl)
}

func TestExecuteWrapsTransportErrors(t *testing.T) {
	svc := &fakeService{err: status.Error(codes.Unavailable, "down")}
	rec := &countingRecorder{}
	c := testClient(svc, rec, resilience.Config{})

	_, err := c.Execute(context.Background(), "anything", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent execute")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.calls, 1)
	assert.Equal(t, recordedCall{"execute", "error"}, rec.calls[0])
	require.Len(t, rec.errors, 1)
	assert.Equal(t, recordedError{"execute", "Unavailable"}, rec.errors[0])
}

func TestCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	svc := &fakeService{err: status.Error(codes.Unavailable, "down")}
	rec := &countingRecorder{}
	c := testClient(svc, rec, resilience.Config{
		TripAfter: 2,
		Timeout:   time.Minute,
	})

	for i := 0; i < 2; i++ {
		_, err := c.Execute(context.Background(), "anything", "")
		require.Error(t, err)
	}
	require.Equal(t, resilience.StateOpen, c.BreakerState())

	// The open breaker rejects the call before it reaches the transport.
	_, err := c.Execute(context.Background(), "anything", "")
	require.Error(t, err)
	assert.Equal(t, errs.InvalidState, errs.CodeOf(err))
	assert.Equal(t, 2, svc.callCount())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, recordedError{"execute", "circuit_open"}, rec.errors[len(rec.errors)-1])
}

func TestExecuteRecordsSuccess(t *testing.T) {
	svc := &fakeService{resp: &pb.ExecuteResponse{Kind: "navigate", Url: "https://example.com"}}
	rec := &countingRecorder{}
	c := testClient(svc, rec, resilience.Config{})

	_, err := c.Execute(context.Background(), "go somewhere", "")
	require.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.calls, 1)
	assert.Equal(t, recordedCall{"execute", "ok"}, rec.calls[0])
	assert.Empty(t, rec.errors)
}
