package grpc

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type entry struct {
	msg  string
	args []any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []entry
}

func (l *recordingLogger) record(msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry{msg: msg, args: args})
}

func (l *recordingLogger) Debug(_ context.Context, msg string, args ...any) { l.record(msg, args) }
func (l *recordingLogger) Info(_ context.Context, msg string, args ...any)  { l.record(msg, args) }
func (l *recordingLogger) Warn(_ context.Context, msg string, args ...any)  { l.record(msg, args) }
func (l *recordingLogger) Error(_ context.Context, msg string, args ...any) { l.record(msg, args) }
func (l *recordingLogger) With(...any) logging.Logger                       { return l }

func argValue(args []any, key string) any {
	for i := 0; i+1 < len(args); i += 2 {
		if args[i] == key {
			return args[i+1]
		}
	}
	return nil
}

func TestLoggingInterceptor(t *testing.T) {
	log := &recordingLogger{}
	s := NewGRPCServer("", log)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	resp, err := s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	_, err = s.loggingInterceptor(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.Unavailable, "down")
	})
	require.Equal(t, codes.Unavailable, status.Code(err))

	require.Len(t, log.entries, 2)
	assert.Equal(t, "/grpc.health.v1.Health/Check", argValue(log.entries[0].args, "method"))
	assert.Equal(t, "OK", argValue(log.entries[0].args, "code"))
	assert.Equal(t, "Unavailable", argValue(log.entries[1].args, "code"))
}
