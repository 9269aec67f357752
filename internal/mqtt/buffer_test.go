package mqtt

import "testing"

func TestOutboxEmptyDrain(t *testing.T) {
	o := newOutbox(10)
	if got := o.drain(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestOutboxPutAndDrain(t *testing.T) {
	o := newOutbox(10)
	for i := 0; i < 5; i++ {
		if dropped := o.put(queuedMsg{topic: "t", payload: []byte{byte(i)}}); dropped {
			t.Errorf("put %d: unexpected drop", i)
		}
	}
	if o.size() != 5 {
		t.Errorf("size = %d, want 5", o.size())
	}

	got := o.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := 0; i < 5; i++ {
		if got[i].payload[0] != byte(i) {
			t.Errorf("item %d: payload = %d, want %d", i, got[i].payload[0], i)
		}
	}

	// Second drain should be empty
	if got := o.drain(); got != nil {
		t.Errorf("expected nil from second drain, got %d items", len(got))
	}
	if o.size() != 0 {
		t.Errorf("size after drain = %d, want 0", o.size())
	}
}

func TestOutboxOverflowKeepsNewest(t *testing.T) {
	o := newOutbox(5)

	// Put 8 items (0..7); the oldest 3 are dropped.
	drops := 0
	for i := 0; i < 8; i++ {
		if o.put(queuedMsg{topic: "t", payload: []byte{byte(i)}}) {
			drops++
		}
	}
	if drops != 3 {
		t.Errorf("drops = %d, want 3", drops)
	}

	got := o.drain()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i := range got {
		want := byte(i + 3)
		if got[i].payload[0] != want {
			t.Errorf("item %d: payload = %d, want %d", i, got[i].payload[0], want)
		}
	}
}

func TestOutboxMultipleCycles(t *testing.T) {
	o := newOutbox(5)

	for i := 0; i < 3; i++ {
		o.put(queuedMsg{topic: "t", payload: []byte{byte(i)}})
	}
	if got := o.drain(); len(got) != 3 {
		t.Fatalf("cycle 1: expected 3 items, got %d", len(got))
	}

	for i := 10; i < 14; i++ {
		o.put(queuedMsg{topic: "t", payload: []byte{byte(i)}})
	}
	got := o.drain()
	if len(got) != 4 {
		t.Fatalf("cycle 2: expected 4 items, got %d", len(got))
	}
	for i, msg := range got {
		want := byte(10 + i)
		if msg.payload[0] != want {
			t.Errorf("cycle 2 item %d: payload = %d, want %d", i, msg.payload[0], want)
		}
	}
}
