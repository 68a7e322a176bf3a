package stream

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-cyber-patrol/internal/filter"
	"github.com/mr1hm/go-cyber-patrol/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func alert(id string, platform models.Platform) models.Record {
	return models.Record{
		ID:        id,
		Kind:      models.KindAlert,
		Platform:  platform,
		Category:  "scam",
		Priority:  models.SeverityHigh,
		Timestamp: "just now",
	}
}

func TestBroadcaster_SubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe(filter.Identity())
	if b.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", b.SubscriberCount())
	}

	b.Unsubscribe(id)
	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.SubscriberCount())
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed")
		}
	default:
		t.Error("channel should be closed and readable")
	}
}

func TestBroadcaster_Broadcast(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe(filter.Identity())
	defer b.Unsubscribe(id)

	b.Broadcast(alert("A001", models.PlatformTelegram))

	select {
	case received := <-ch:
		if received.ID != "A001" {
			t.Errorf("expected ID A001, got %s", received.ID)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for broadcast")
	}
}

func TestBroadcaster_PerSubscriberFilter(t *testing.T) {
	b := NewBroadcaster()

	webID, web := b.Subscribe(filter.FilterSet{Platform: "web"})
	defer b.Unsubscribe(webID)
	allID, all := b.Subscribe(filter.Identity())
	defer b.Unsubscribe(allID)

	b.Broadcast(alert("A001", models.PlatformTelegram))
	b.Broadcast(alert("A002", models.PlatformWeb))

	if len(web) != 1 {
		t.Fatalf("expected 1 record for web subscriber, got %d", len(web))
	}
	if r := <-web; r.ID != "A002" {
		t.Errorf("expected A002, got %s", r.ID)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 records for unfiltered subscriber, got %d", len(all))
	}
}

func TestBroadcaster_Last24hUsesClock(t *testing.T) {
	b := NewBroadcaster()
	b.now = func() time.Time { return time.Date(2024, 1, 15, 15, 0, 0, 0, time.Local) }

	id, ch := b.Subscribe(filter.FilterSet{TimeWindow: filter.WindowLast24h})
	defer b.Unsubscribe(id)

	fresh := alert("fresh", models.PlatformWeb)
	fresh.Timestamp = "2024-01-15 14:00"
	stale := alert("stale", models.PlatformWeb)
	stale.Timestamp = "2024-01-10 14:00"

	b.Broadcast(stale)
	b.Broadcast(fresh)

	if len(ch) != 1 {
		t.Fatalf("expected 1 record, got %d", len(ch))
	}
	if r := <-ch; r.ID != "fresh" {
		t.Errorf("expected fresh, got %s", r.ID)
	}
}

func TestBroadcaster_ConcurrentSubscribeBroadcast(t *testing.T) {
	b := NewBroadcaster()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, ch := b.Subscribe(filter.Identity())
			drained := make(chan struct{})
			go func() {
				defer close(drained)
				for range ch {
				}
			}()
			time.Sleep(5 * time.Millisecond)
			b.Unsubscribe(id)
			<-drained
		}()
	}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			b.Broadcast(alert(fmt.Sprintf("A%03d", n), models.PlatformWeb))
		}(i)
	}

	wg.Wait()

	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.SubscriberCount())
	}
}

func TestBroadcaster_Close(t *testing.T) {
	b := NewBroadcaster()

	var channels []<-chan models.Record
	for i := 0; i < 5; i++ {
		_, ch := b.Subscribe(filter.Identity())
		channels = append(channels, ch)
	}

	b.Close()

	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after close, got %d", b.SubscriberCount())
	}
	for i, ch := range channels {
		select {
		case _, ok := <-ch:
			if ok {
				t.Errorf("channel %d should be closed", i)
			}
		default:
			t.Errorf("channel %d should be closed and readable", i)
		}
	}

	_, late := b.Subscribe(filter.Identity())
	if _, ok := <-late; ok {
		t.Error("expected subscription after Close to be closed")
	}
}

func TestBroadcaster_SlowSubscriber(t *testing.T) {
	b := NewBroadcaster()

	id, ch := b.Subscribe(filter.Identity())
	defer b.Unsubscribe(id)

	// Fill the buffer + 1 more
	for i := 0; i < subscriberBuffer+1; i++ {
		b.Broadcast(alert(fmt.Sprintf("flood_%d", i), models.PlatformWeb))
	}

	if len(ch) != subscriberBuffer {
		t.Errorf("expected %d buffered records, got %d", subscriberBuffer, len(ch))
	}
	if b.Dropped() != 1 {
		t.Errorf("expected 1 dropped record, got %d", b.Dropped())
	}
}
