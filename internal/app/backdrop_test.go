package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/verse-service/internal/domain"
	"github.com/jsamuelsen/verse-service/internal/mocks"
)

func TestBackdrop_KeepsLastSuccessOnFailure(t *testing.T) {
	source := mocks.NewMockImageSource(t)
	source.EXPECT().Random(mock.Anything, mock.Anything).Return(&domain.Backdrop{URL: "first"}, nil).Once()
	source.EXPECT().Random(mock.Anything, mock.Anything).Return(nil, domain.NewUnavailableError("picsum", "timeout")).Once()

	b := NewBackdrop(source, time.Second)
	defer b.Close()

	_, ok := b.Current()
	assert.False(t, ok)

	b.Refresh(context.Background())
	b.Wait()

	b.Refresh(context.Background())
	b.Wait()

	got, ok := b.Current()
	require.True(t, ok)
	assert.Equal(t, "first", got.URL)
}

func TestBackdrop_RefreshDuringFetchIsCoalesced(t *testing.T) {
	tests := []struct {
		name     string
		requests int
	}{
		{name: "single request while busy", requests: 1},
		{name: "rapid picks", requests: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := mocks.NewMockImageSource(t)
			started := make(chan struct{})
			release := make(chan struct{})
			var firstErr error

			source.EXPECT().Random(mock.Anything, mock.Anything).
				RunAndReturn(func(ctx context.Context, _ int64) (*domain.Backdrop, error) {
					close(started)
					<-release
					firstErr = ctx.Err()

					return &domain.Backdrop{URL: "first"}, nil
				}).Once()
			source.EXPECT().Random(mock.Anything, mock.Anything).Return(&domain.Backdrop{URL: "second"}, nil).Once()

			b := NewBackdrop(source, 5*time.Second)
			defer b.Close()

			b.Refresh(context.Background())
			<-started

			for range tt.requests {
				b.Refresh(context.Background())
			}

			close(release)
			b.Wait()

			assert.NoError(t, firstErr, "in-flight fetch is not cancelled by newer requests")

			got, ok := b.Current()
			require.True(t, ok)
			assert.Equal(t, "second", got.URL)
		})
	}
}

func TestBackdrop_RefreshAfterIdleStartsNewFetch(t *testing.T) {
	source := mocks.NewMockImageSource(t)
	source.EXPECT().Random(mock.Anything, mock.Anything).Return(&domain.Backdrop{URL: "first"}, nil).Once()
	source.EXPECT().Random(mock.Anything, mock.Anything).Return(&domain.Backdrop{URL: "second"}, nil).Once()

	b := NewBackdrop(source, time.Second)
	defer b.Close()

	b.Refresh(context.Background())
	b.Wait()

	got, ok := b.Current()
	require.True(t, ok)
	assert.Equal(t, "first", got.URL)

	b.Refresh(context.Background())
	b.Wait()

	got, ok = b.Current()
	require.True(t, ok)
	assert.Equal(t, "second", got.URL)
}

func TestBackdrop_OutlivesCallerContext(t *testing.T) {
	source := mocks.NewMockImageSource(t)
	source.EXPECT().Random(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ int64) (*domain.Backdrop, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			return &domain.Backdrop{URL: "ok"}, nil
		}).Once()

	b := NewBackdrop(source, time.Second)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	b.Refresh(ctx)
	cancel()
	b.Wait()

	got, ok := b.Current()
	require.True(t, ok)
	assert.Equal(t, "ok", got.URL)
}

func TestBackdrop_CloseCancelsInFlight(t *testing.T) {
	source := mocks.NewMockImageSource(t)
	started := make(chan struct{})

	source.EXPECT().Random(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ int64) (*domain.Backdrop, error) {
			close(started)
			<-ctx.Done()

			return nil, errors.Join(domain.ErrUnavailable, ctx.Err())
		}).Once()

	b := NewBackdrop(source, time.Minute)
	b.Refresh(context.Background())
	<-started

	done := make(chan struct{})
	go func() {
		b.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the in-flight fetch")
	}

	_, ok := b.Current()
	assert.False(t, ok)
}

func TestBackdrop_CloseDropsPendingRequest(t *testing.T) {
	source := mocks.NewMockImageSource(t)
	started := make(chan struct{})

	source.EXPECT().Random(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ int64) (*domain.Backdrop, error) {
			close(started)
			<-ctx.Done()

			return nil, ctx.Err()
		}).Once()

	b := NewBackdrop(source, time.Minute)
	b.Refresh(context.Background())
	<-started
	b.Refresh(context.Background())

	b.Close()

	_, ok := b.Current()
	assert.False(t, ok)
}
