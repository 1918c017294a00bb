package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSocket struct {
	mu      sync.Mutex
	written [][]byte
	pings   int
	closed  bool
	fail    bool
	block   chan struct{}
}

func (s *fakeSocket) WriteText(data []byte) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("broken pipe")
	}
	s.written = append(s.written, data)
	return nil
}

func (s *fakeSocket) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pings++
	return nil
}

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSocket) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.written)
}

func (s *fakeSocket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func startClient(t *testing.T, a *Audience, s Socket, buffer int) *Client {
	t.Helper()
	c := NewClient(s, buffer)
	a.Register(c)
	go c.Run(0)
	t.Cleanup(c.Close)
	return c
}

func TestAudience_BrokenObserverIsolated(t *testing.T) {
	a := NewAudience("viewer", zerolog.Nop())
	healthy := []*fakeSocket{{}, {}, {}}
	for _, s := range healthy {
		startClient(t, a, s, 8)
	}
	broken := &fakeSocket{fail: true}
	bc := startClient(t, a, broken, 8)
	require.Equal(t, 4, a.Len())

	a.Broadcast([]byte(`[1]`))

	require.Eventually(t, bc.Closed, time.Second, 5*time.Millisecond)
	assert.True(t, broken.isClosed())

	delivered := a.Broadcast([]byte(`[2]`))
	assert.Equal(t, 3, delivered)
	assert.Equal(t, 3, a.Len())

	for _, s := range healthy {
		s := s
		require.Eventually(t, func() bool { return s.count() == 2 }, time.Second, 5*time.Millisecond)
	}
	assert.Empty(t, broken.written)
}

func TestAudience_StalledObserverDropped(t *testing.T) {
	a := NewAudience("operator", zerolog.Nop())
	fast := &fakeSocket{}
	startClient(t, a, fast, 8)

	stalled := &fakeSocket{block: make(chan struct{})}
	defer close(stalled.block)
	sc := startClient(t, a, stalled, 1)

	for i := 0; i < 5; i++ {
		a.Broadcast([]byte(`{}`))
	}

	assert.True(t, sc.Closed())
	assert.Equal(t, 1, a.Len())
	require.Eventually(t, func() bool { return fast.count() == 5 }, time.Second, 5*time.Millisecond)
}

func TestAudience_UnregisterClosesClient(t *testing.T) {
	a := NewAudience("viewer", zerolog.Nop())
	s := &fakeSocket{}
	c := startClient(t, a, s, 4)

	a.Unregister(c)
	a.Unregister(c)

	assert.Equal(t, 0, a.Len())
	assert.True(t, c.Closed())
	assert.True(t, s.isClosed())
	assert.False(t, c.Enqueue([]byte(`x`)))
}

func TestAudience_CloseAll(t *testing.T) {
	a := NewAudience("viewer", zerolog.Nop())
	sockets := []*fakeSocket{{}, {}}
	for _, s := range sockets {
		startClient(t, a, s, 4)
	}

	a.CloseAll()

	assert.Equal(t, 0, a.Len())
	for _, s := range sockets {
		assert.True(t, s.isClosed())
	}
	assert.Equal(t, 0, a.Broadcast([]byte(`x`)))
}

func TestClient_UniqueIDs(t *testing.T) {
	a := NewClient(&fakeSocket{}, 1)
	b := NewClient(&fakeSocket{}, 1)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEmpty(t, a.ID)
}

func TestClient_Pings(t *testing.T) {
	s := &fakeSocket{}
	c := NewClient(s, 1)
	go c.Run(10 * time.Millisecond)
	defer c.Close()

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.pings >= 2
	}, time.Second, 5*time.Millisecond)
}
