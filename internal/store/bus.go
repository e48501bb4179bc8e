package store

// Topic identifies the kind of state a change event is about. TopicStorage is
// the generic "something changed" signal published alongside every named topic.
type Topic string

// Change topics.
const (
	TopicStorage   Topic = "storage"
	TopicPositions Topic = "positions"
	TopicAttrs     Topic = "attributes"
	TopicGroups    Topic = "groups"
	TopicPresets   Topic = "presets"
	TopicPoints    Topic = "points"
)

// Event describes one mutation. Key is the namespace key that changed.
type Event struct {
	Topic Topic
	Key   string
}

// Bus is a synchronous observer list. Subscribers run inline on the mutating
// call, matching the single-threaded event-driven execution model; handlers
// must not mutate stores re-entrantly.
type Bus struct {
	subs []func(Event)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for every published event.
func (b *Bus) Subscribe(fn func(Event)) {
	b.subs = append(b.subs, fn)
}

// Publish delivers ev to all subscribers, then re-publishes it under the
// generic storage topic so coarse consumers need only one subscription.
func (b *Bus) Publish(ev Event) {
	for _, fn := range b.subs {
		fn(ev)
	}
	if ev.Topic != TopicStorage {
		generic := Event{Topic: TopicStorage, Key: ev.Key}
		for _, fn := range b.subs {
			fn(generic)
		}
	}
}
