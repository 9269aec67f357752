package mqtt

// queuedMsg stores a serialized MQTT message for replay after reconnection.
type queuedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO holding messages that could not be sent
// while the broker connection was down. When full, the oldest message is
// overwritten. Not safe for concurrent use — caller must synchronize.
type outbox struct {
	buf   []queuedMsg
	head  int // next write position
	count int
}

func newOutbox(capacity int) *outbox {
	return &outbox{buf: make([]queuedMsg, capacity)}
}

// put enqueues a message and reports whether an older message was dropped
// to make room.
func (o *outbox) put(msg queuedMsg) bool {
	dropped := o.count == len(o.buf)
	if !dropped {
		o.count++
	}
	o.buf[o.head] = msg
	o.head = (o.head + 1) % len(o.buf)
	return dropped
}

// drain returns the queued messages oldest-first and empties the outbox.
func (o *outbox) drain() []queuedMsg {
	if o.count == 0 {
		return nil
	}
	out := make([]queuedMsg, o.count)
	start := (o.head - o.count + len(o.buf)) % len(o.buf)
	for i := range out {
		out[i] = o.buf[(start+i)%len(o.buf)]
	}
	o.head = 0
	o.count = 0
	return out
}

func (o *outbox) size() int {
	return o.count
}
