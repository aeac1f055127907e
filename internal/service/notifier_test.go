package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu   sync.Mutex
	sent map[int64][]string
	ok   bool
}

func (s *fakeSender) Send(_ context.Context, chatID int64, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent == nil {
		s.sent = map[int64][]string{}
	}
	s.sent[chatID] = append(s.sent[chatID], text)
	return s.ok
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, msgs := range s.sent {
		n += len(msgs)
	}
	return n
}

func formatKind(n domain.Notification) string { return string(n.Kind) }

func TestDispatcher_DeliversToLinkedUsers(t *testing.T) {
	store := newMemStore()
	linked := store.seedUser(0, 0)
	chatID := int64(99)
	linked.TelegramID = &chatID
	store.users[linked.ID] = linked
	web := store.seedUser(0, 0)

	sender := &fakeSender{ok: true}
	d := NewDispatcher(store, sender, formatKind, 8)
	d.Notify(domain.Notification{Kind: domain.NotifyExchange, UserID: linked.ID})
	d.Notify(domain.Notification{Kind: domain.NotifyExchange, UserID: web.ID})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return len(d.queue) == 0 && sender.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []string{"exchange"}, sender.sent[99])
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(newMemStore(), &fakeSender{ok: true}, formatKind, 2)

	start := time.Now()
	for i := 0; i < 10; i++ {
		d.Notify(domain.Notification{Kind: domain.NotifyMissionReward})
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.Len(t, d.queue, 2)
}
