package timesync

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/otagate/internal/server/storage/memory"
)

// setupTestLogger создает logger для тестов
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

type stubSource struct {
	date  string
	err   error
	calls int
}

func (s *stubSource) FetchDate(context.Context) (string, error) {
	s.calls++
	return s.date, s.err
}

func TestSynchronizer_Sync(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		dstLocal  bool
		wantEpoch int64
		wantDST   bool
	}{
		{
			name:      "winter",
			date:      "Fri, 01 Mar 2024 00:00:00 GMT",
			wantEpoch: 1709251200 + 3600,
		},
		{
			name:      "summer",
			date:      "Mon, 15 Jul 2024 12:00:00 GMT",
			wantEpoch: time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC).Unix() + 7200,
			wantDST:   true,
		},
		{
			// 01:30 GMT в день перехода: по GMT ещё зимнее время
			name:      "march switch from gmt fields",
			date:      "Sun, 31 Mar 2024 01:30:00 GMT",
			wantEpoch: time.Date(2024, 3, 31, 1, 30, 0, 0, time.UTC).Unix() + 3600,
		},
		{
			// а по местному поясному времени это уже 02:30
			name:      "march switch from local fields",
			date:      "Sun, 31 Mar 2024 01:30:00 GMT",
			dstLocal:  true,
			wantEpoch: time.Date(2024, 3, 31, 1, 30, 0, 0, time.UTC).Unix() + 7200,
			wantDST:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			s := NewSynchronizer(&stubSource{date: tt.date}, setupTestLogger(),
				WithClock(clock.Now), WithDSTFromLocal(tt.dstLocal))

			require.NoError(t, s.Sync(context.Background()))

			epoch, synced := s.Now()
			assert.True(t, synced)
			assert.Equal(t, tt.wantEpoch, epoch)

			st := s.Status()
			assert.Equal(t, tt.wantDST, st.DST)
			assert.Equal(t, tt.wantEpoch, st.LastSync)
		})
	}
}

func TestSynchronizer_NowAdvances(t *testing.T) {
	clock := newFakeClock()
	s := NewSynchronizer(&stubSource{date: "Fri, 01 Mar 2024 00:00:00 GMT"}, setupTestLogger(),
		WithClock(clock.Now))

	epoch, synced := s.Now()
	assert.False(t, synced)
	assert.Zero(t, epoch)

	require.NoError(t, s.Sync(context.Background()))
	clock.Advance(90*time.Second + 500*time.Millisecond)

	epoch, synced = s.Now()
	assert.True(t, synced)
	assert.Equal(t, int64(1709254800+90), epoch)
}

func TestSynchronizer_FailureKeepsState(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	src := &stubSource{date: "Fri, 01 Mar 2024 00:00:00 GMT"}
	s := NewSynchronizer(src, setupTestLogger(), WithClock(clock.Now))

	src.err = errors.New("connection refused")
	assert.Error(t, s.Sync(ctx))
	_, synced := s.Now()
	assert.False(t, synced)

	src.err = nil
	require.NoError(t, s.Sync(ctx))
	before, _ := s.Now()

	src.date = "garbage"
	assert.ErrorIs(t, s.Sync(ctx), ErrInvalidDate)

	after, synced := s.Now()
	assert.True(t, synced)
	assert.Equal(t, before, after)
}

func TestSynchronizer_MaybeSync(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	src := &stubSource{err: errors.New("timeout")}
	s := NewSynchronizer(src, setupTestLogger(), WithClock(clock.Now), WithInterval(time.Hour))

	assert.True(t, s.Due(clock.Now()))
	assert.False(t, s.MaybeSync(ctx))
	assert.Equal(t, 1, src.calls)

	// до истечения интервала повтор не выполняется
	clock.Advance(59 * time.Minute)
	assert.False(t, s.MaybeSync(ctx))
	assert.Equal(t, 1, src.calls)

	clock.Advance(time.Minute)
	src.err = nil
	src.date = "Fri, 01 Mar 2024 00:00:00 GMT"
	assert.True(t, s.MaybeSync(ctx))
	assert.Equal(t, 2, src.calls)

	// после успешной синхронизации повторы прекращаются
	clock.Advance(24 * time.Hour)
	assert.False(t, s.Due(clock.Now()))
	assert.False(t, s.MaybeSync(ctx))
	assert.Equal(t, 2, src.calls)
}

func TestSynchronizer_Recorder(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	clock := newFakeClock()

	s := NewSynchronizer(&stubSource{date: "Fri, 01 Mar 2024 00:00:00 GMT"}, setupTestLogger(),
		WithClock(clock.Now), WithRecorder(store))
	require.NoError(t, s.Sync(ctx))

	ts, err := store.GetLastSyncTimestamp(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1709254800), ts)

	restored := NewSynchronizer(&stubSource{}, setupTestLogger(), WithRecorder(store))
	require.NoError(t, restored.Restore(ctx))

	st := restored.Status()
	assert.False(t, st.Synced)
	assert.Equal(t, int64(1709254800), st.LastSync)
}

func TestHTTPDateSource(t *testing.T) {
	t.Run("reads date header", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodHead, r.Method)
			w.Header().Set("Date", "Fri, 01 Mar 2024 00:00:00 GMT")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		date, err := NewHTTPDateSource(srv.URL, time.Second).FetchDate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Fri, 01 Mar 2024 00:00:00 GMT", date)
	})

	t.Run("error status still carries date", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Date", "Fri, 01 Mar 2024 00:00:00 GMT")
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		date, err := NewHTTPDateSource(srv.URL, time.Second).FetchDate(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, date)
	})

	t.Run("date suppressed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header()["Date"] = nil
		}))
		defer srv.Close()

		_, err := NewHTTPDateSource(srv.URL, time.Second).FetchDate(context.Background())
		assert.ErrorIs(t, err, ErrNoDateHeader)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer srv.Close()
		defer close(release)

		_, err := NewHTTPDateSource(srv.URL, 50*time.Millisecond).FetchDate(context.Background())
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewHTTPDateSource(url, time.Second).FetchDate(context.Background())
		assert.Error(t, err)
	})
}
