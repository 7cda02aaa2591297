package display

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pkg.jsn.cam/gentexts/internal/worldtime"
	"pkg.jsn.cam/gentexts/pkg/gentexts"
)

type fakeSource struct {
	mu       sync.Mutex
	calls    int
	failEach int
	timeErr  error
}

func (f *fakeSource) RandomText(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.failEach > 0 && f.calls%f.failEach == 0 {
		return "", gentexts.ErrAllocation
	}
	return "alpha beta gamma delta epsilon ", nil
}

func (f *fakeSource) WorldTime(ctx context.Context) (worldtime.Snapshot, error) {
	if f.timeErr != nil {
		return worldtime.Snapshot{}, f.timeErr
	}
	return worldtime.Snapshot{
		Timezone: "America/Manaus",
		Datetime: "2026-10-16T09:30:00-04:00",
		Raw:      []byte(`{"timezone":"America/Manaus"}`),
	}, nil
}

func (f *fakeSource) Elapsed() time.Duration { return 3 * time.Second }

func (f *fakeSource) textCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimSpace(b.buf.String()), "\n")
}

func runFor(t *testing.T, src Source, d time.Duration) []string {
	t.Helper()

	out := &syncBuffer{}
	p := New(src, out, Config{
		TextInterval:    10 * time.Millisecond,
		ElapsedInterval: 5 * time.Millisecond,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	require.NoError(t, p.Run(ctx))
	return out.Lines()
}

func TestRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &fakeSource{}
	lines := runFor(t, src, 60*time.Millisecond)

	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "== America/Manaus, 2026-10-16T09:30:00-04:00 ==", lines[0])
	assert.Equal(t, `World time: {"timezone":"America/Manaus"}`, lines[1])
	assert.Equal(t, "Text: alpha beta gamma delta epsilon ", lines[2], "first text is shown immediately")

	assert.Contains(t, lines, "Elapsed: 3s")
	assert.GreaterOrEqual(t, src.textCalls(), 2, "text refreshes on its timer")
}

func TestRun_WorldTimeFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	lines := runFor(t, &fakeSource{timeErr: errors.New("unreachable")}, 20*time.Millisecond)

	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "== "+ErrorTitle+" ==", lines[0])
	assert.Equal(t, "World time: request failed", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "Text: "))
}

func TestRun_SkipsFailedCycles(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &fakeSource{failEach: 2}
	lines := runFor(t, src, 60*time.Millisecond)

	texts := 0
	for _, line := range lines {
		if strings.HasPrefix(line, "Text: ") {
			texts++
		}
	}

	calls := src.textCalls()
	assert.Equal(t, calls-calls/2, texts)
}

func TestNew_Defaults(t *testing.T) {
	p := New(&fakeSource{}, &bytes.Buffer{}, Config{}, nil)
	assert.Equal(t, 10*time.Second, p.cfg.TextInterval)
	assert.Equal(t, time.Second, p.cfg.ElapsedInterval)
}

func TestRun_StopsCleanly(t *testing.T) {
	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{
			name: "deadline",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithDeadline(context.Background(), time.Now().Add(15*time.Millisecond))
			},
		},
		{
			name: "cancel",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				time.AfterFunc(15*time.Millisecond, cancel)
				return ctx, cancel
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			ctx, cancel := tt.ctx()
			defer cancel()

			p := New(&fakeSource{}, &syncBuffer{}, Config{
				TextInterval:    5 * time.Millisecond,
				ElapsedInterval: 5 * time.Millisecond,
			}, nil)

			assert.NoError(t, p.Run(ctx))
			assert.Error(t, ctx.Err())
		})
	}
}
