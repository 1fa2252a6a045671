package uasub

import (
	"sync"

	"github.com/foundry-iiot/opcua/pkg/ua"
	"github.com/foundry-iiot/opcua/pkg/uaservices"
)

// MonitoredItemSpec describes one attribute to monitor and the
// callback its notifications route to. Exactly one of DataChange or
// Event should be set, matching whether ItemToMonitor names a
// variable/attribute or an event notifier (spec §4.7).
type MonitoredItemSpec struct {
	ItemToMonitor    uaservices.ReadValueId
	MonitoringMode   uint32
	SamplingInterval float64
	Filter           ua.ExtensionObject
	QueueSize        uint32
	DiscardOldest    bool

	DataChange DataChangeHandler
	Event      EventHandler
}

// Subscription is one server-side subscription plus the client-side
// bookkeeping the publish loop needs: the in-order notification
// buffer, the pending-ack set, and the clientHandle-to-callback table
// (spec §4.7).
type Subscription struct {
	eng *Engine
	id  uint32

	RevisedPublishingInterval float64
	RevisedLifetimeCount      uint32
	RevisedMaxKeepAliveCount  uint32

	mu          sync.Mutex
	pendingAcks []uaservices.SubscriptionAcknowledgement
	haveLastSeq bool
	lastSeq     uint32
	buffered    map[uint32]uaservices.NotificationMessage
	items       map[uint32]itemCallback
}

// ID is the server-assigned subscriptionId.
func (s *Subscription) ID() uint32 { return s.id }

// CreateMonitoredItems asks the server to monitor specs, assigning
// each a fresh clientHandle and binding it to the caller's callback on
// success (spec §4.7).
func (s *Subscription) CreateMonitoredItems(ttr uaservices.TimestampsToReturn, specs []MonitoredItemSpec) ([]uaservices.MonitoredItemCreateResult, error) {
	handles := make([]uint32, len(specs))
	itemsToCreate := make([]uaservices.MonitoredItemCreateRequest, len(specs))
	for i, spec := range specs {
		h := s.eng.nextClientHandle()
		handles[i] = h
		itemsToCreate[i] = uaservices.MonitoredItemCreateRequest{
			ItemToMonitor:  spec.ItemToMonitor,
			MonitoringMode: spec.MonitoringMode,
			RequestedParameters: uaservices.MonitoringParameters{
				ClientHandle:     h,
				SamplingInterval: spec.SamplingInterval,
				Filter:           spec.Filter,
				QueueSize:        spec.QueueSize,
				DiscardOldest:    spec.DiscardOldest,
			},
		}
	}

	req := uaservices.CreateMonitoredItemsRequest{
		Header:             s.eng.sess.NewRequestHeader(uaservices.DefaultTimeoutHint),
		SubscriptionID:     s.id,
		TimestampsToReturn: ttr,
		ItemsToCreate:      itemsToCreate,
	}
	resp, err := uaservices.Call[uaservices.CreateMonitoredItemsResponse](s.eng.sess.Dispatcher(), req, 0)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range specs {
		if i >= len(resp.Results) || resp.Results[i].StatusCode.IsBad() {
			continue
		}
		s.items[handles[i]] = itemCallback{dataChange: specs[i].DataChange, event: specs[i].Event}
	}
	s.mu.Unlock()

	return resp.Results, nil
}

// DeleteMonitoredItems ends server-side monitoring of the items and
// returns the per-item results. monitoredItemIDs are server-assigned
// monitoredItemIds, not the clientHandles the callback table is keyed
// by, so the callback table is left untouched; ForgetMonitoredItems
// drops those bindings.
func (s *Subscription) DeleteMonitoredItems(monitoredItemIDs []uint32) ([]ua.StatusCode, error) {
	req := uaservices.DeleteMonitoredItemsRequest{
		Header:           s.eng.sess.NewRequestHeader(uaservices.DefaultTimeoutHint),
		SubscriptionID:   s.id,
		MonitoredItemIds: monitoredItemIDs,
	}
	resp, err := uaservices.Call[uaservices.DeleteMonitoredItemsResponse](s.eng.sess.Dispatcher(), req, 0)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// ForgetMonitoredItems drops the callback bindings for clientHandles,
// for use alongside DeleteMonitoredItems once the caller has mapped
// monitoredItemIds back to the handles it assigned them.
func (s *Subscription) ForgetMonitoredItems(clientHandles []uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range clientHandles {
		delete(s.items, h)
	}
}

// drainAcks returns and clears the acknowledgements accumulated since
// the previous Publish round trip.
func (s *Subscription) drainAcks() []uaservices.SubscriptionAcknowledgement {
	s.mu.Lock()
	defer s.mu.Unlock()
	acks := s.pendingAcks
	s.pendingAcks = nil
	return acks
}

// requeueAck puts an acknowledgement back after a failed Publish round
// trip.
func (s *Subscription) requeueAck(a uaservices.SubscriptionAcknowledgement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingAcks = append(s.pendingAcks, a)
}

// receive buffers msg and delivers every notification now in order,
// enforcing the strictly-increasing sequence-number guarantee a
// single subscription makes even though the engine may have several
// Publish requests outstanding concurrently (spec §4.7 "Ordering").
// The first message observed seeds the expected sequence rather than
// requiring it start at any particular value.
func (s *Subscription) receive(msg uaservices.NotificationMessage) {
	s.mu.Lock()

	s.pendingAcks = append(s.pendingAcks, uaservices.SubscriptionAcknowledgement{
		SubscriptionID: s.id,
		SequenceNumber: msg.SequenceNumber,
	})

	if !s.haveLastSeq {
		s.haveLastSeq = true
		s.lastSeq = msg.SequenceNumber - 1
	}
	s.buffered[msg.SequenceNumber] = msg

	var ready []uaservices.NotificationMessage
	for {
		next, ok := s.buffered[s.lastSeq+1]
		if !ok {
			break
		}
		delete(s.buffered, s.lastSeq+1)
		s.lastSeq++
		ready = append(ready, next)
	}
	s.mu.Unlock()

	for _, m := range ready {
		s.eng.deliverNotification(s, m)
	}
}

func (s *Subscription) deliverDataChange(clientHandle uint32, value ua.DataValue) {
	s.mu.Lock()
	cb, ok := s.items[clientHandle]
	s.mu.Unlock()
	if !ok || cb.dataChange == nil {
		return
	}
	cb.dataChange(value)
}

func (s *Subscription) deliverEvent(clientHandle uint32, fields []ua.Variant) {
	s.mu.Lock()
	cb, ok := s.items[clientHandle]
	s.mu.Unlock()
	if !ok || cb.event == nil {
		return
	}
	cb.event(fields)
}
