// Package uasub implements the SubscriptionEngine: CreateSubscription /
// ModifySubscription / DeleteSubscriptions, CreateMonitoredItems /
// DeleteMonitoredItems, and the publish loop that keeps a target
// number of Publish requests outstanding and routes each
// NotificationMessage to the DataChange or Event callback registered
// for its ClientHandle (spec §4.7).
//
// There is one publish loop per Engine (and so per Session), not one per
// subscription: it keeps the target number of publishOnce goroutines in
// flight, each issuing one Publish. This generalizes backkem/matter's
// pkg/im response-handler
// pattern (pkg/im/client.go's one-exchange-per-request model) into a
// persistent loop that keeps re-issuing Publish as long as the engine
// is alive, instead of one-shot invoke/read.
package uasub

import (
	"errors"
	"sync"
	"time"

	"github.com/foundry-iiot/opcua/pkg/ua"
	"github.com/foundry-iiot/opcua/pkg/uaerr"
	"github.com/foundry-iiot/opcua/pkg/uasession"
	"github.com/foundry-iiot/opcua/pkg/uaservices"
	"github.com/pion/logging"
)

// DefaultPublishTimeout bounds how long one Publish call waits before
// the dispatcher gives up and this loop retries it (spec §4.7 "a
// publish that times out is retried").
const DefaultPublishTimeout = 2 * time.Minute

// Config configures Engine.
type Config struct {
	// PublishTimeout bounds each outstanding Publish call. Defaults to
	// DefaultPublishTimeout when zero.
	PublishTimeout time.Duration

	// LoggerFactory builds the engine's logger. Logging is disabled
	// when nil.
	LoggerFactory logging.LoggerFactory
}

func (c Config) publishTimeoutOrDefault() time.Duration {
	if c.PublishTimeout <= 0 {
		return DefaultPublishTimeout
	}
	return c.PublishTimeout
}

// DataChangeHandler receives one DataValue sample for a monitored
// item.
type DataChangeHandler func(value ua.DataValue)

// EventHandler receives one event occurrence's selected fields for a
// monitored item.
type EventHandler func(fields []ua.Variant)

type itemCallback struct {
	dataChange DataChangeHandler
	event      EventHandler
}

// Engine owns one publish loop per Session and every Subscription
// created on it.
type Engine struct {
	sess *uasession.Session
	log  logging.LeveledLogger
	cfg  Config

	mu         sync.Mutex
	subs       map[uint32]*Subscription
	nextHandle uint32
	target     int
	outstanding int
	stopped    bool
}

// NewEngine starts the publish loop bound to sess. The loop sends no
// Publish requests until the first subscription is created (spec
// §4.7's "target N = max(2, subscriptionCount)" is zero with zero
// subscriptions).
func NewEngine(sess *uasession.Session, cfg Config) *Engine {
	e := &Engine{
		sess: sess,
		cfg:  cfg,
		subs: make(map[uint32]*Subscription),
	}
	if cfg.LoggerFactory != nil {
		e.log = cfg.LoggerFactory.NewLogger("uasub.engine")
	}
	return e
}

// CreateSubscription negotiates a new subscription and folds it into
// the publish loop's target outstanding count.
func (e *Engine) CreateSubscription(req uaservices.CreateSubscriptionRequest) (*Subscription, error) {
	req.Header = e.sess.NewRequestHeader(uaservices.DefaultTimeoutHint)
	resp, err := uaservices.Call[uaservices.CreateSubscriptionResponse](e.sess.Dispatcher(), req, 0)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		eng:                      e,
		id:                       resp.SubscriptionID,
		RevisedPublishingInterval: resp.RevisedPublishingInterval,
		RevisedLifetimeCount:      resp.RevisedLifetimeCount,
		RevisedMaxKeepAliveCount:  resp.RevisedMaxKeepAliveCount,
		buffered:                 make(map[uint32]uaservices.NotificationMessage),
		items:                    make(map[uint32]itemCallback),
	}

	e.mu.Lock()
	e.subs[sub.id] = sub
	e.retarget()
	e.mu.Unlock()

	return sub, nil
}

// ModifySubscription renegotiates timing on an existing subscription.
func (e *Engine) ModifySubscription(req uaservices.ModifySubscriptionRequest) (uaservices.ModifySubscriptionResponse, error) {
	req.Header = e.sess.NewRequestHeader(uaservices.DefaultTimeoutHint)
	return uaservices.Call[uaservices.ModifySubscriptionResponse](e.sess.Dispatcher(), req, 0)
}

// SetPublishingMode enables or disables publishing for one or more
// subscriptions without deleting them.
func (e *Engine) SetPublishingMode(publishingEnabled bool, subscriptionIDs []uint32) ([]ua.StatusCode, error) {
	req := uaservices.SetPublishingModeRequest{
		Header:            e.sess.NewRequestHeader(uaservices.DefaultTimeoutHint),
		PublishingEnabled: publishingEnabled,
		SubscriptionIds:   subscriptionIDs,
	}
	resp, err := uaservices.Call[uaservices.SetPublishingModeResponse](e.sess.Dispatcher(), req, 0)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// DeleteSubscriptions ends subscriptionIDs and removes them from the
// publish loop's bookkeeping. Outstanding Publish requests naming a
// deleted subscription will fail with a Bad status the loop treats as
// terminal for that subscription, not as an error to surface (spec
// §4.7 "Cancellation").
func (e *Engine) DeleteSubscriptions(subscriptionIDs []uint32) ([]ua.StatusCode, error) {
	req := uaservices.DeleteSubscriptionsRequest{
		Header:          e.sess.NewRequestHeader(uaservices.DefaultTimeoutHint),
		SubscriptionIds: subscriptionIDs,
	}
	resp, err := uaservices.Call[uaservices.DeleteSubscriptionsResponse](e.sess.Dispatcher(), req, 0)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	for _, id := range subscriptionIDs {
		delete(e.subs, id)
	}
	e.retarget()
	e.mu.Unlock()

	return resp.Results, nil
}

// Close stops the publish loop. Outstanding Publish calls unwind on
// their own timeout or on the dispatcher closing; Close only prevents
// new ones from being spawned.
func (e *Engine) Close() {
	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
}

func (e *Engine) nextClientHandle() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextHandle++
	return e.nextHandle
}

// retarget recomputes the target outstanding Publish count (spec
// §4.7: N = max(2, subscriptionCount), zero with no subscriptions) and
// spawns workers to reach it. Caller holds e.mu.
func (e *Engine) retarget() {
	switch n := len(e.subs); {
	case n == 0:
		e.target = 0
	case n < 2:
		e.target = 2
	default:
		e.target = n
	}
	e.fill()
}

// fill spawns publishOnce workers until outstanding reaches target.
// Caller holds e.mu.
func (e *Engine) fill() {
	for e.outstanding < e.target && !e.stopped {
		e.outstanding++
		go e.publishOnce()
	}
}

func (e *Engine) publishOnce() {
	defer func() {
		e.mu.Lock()
		e.outstanding--
		e.fill()
		e.mu.Unlock()
	}()

	e.mu.Lock()
	acks := e.drainAcksLocked()
	e.mu.Unlock()

	req := uaservices.PublishRequest{
		Header:                       e.sess.NewRequestHeader(e.cfg.publishTimeoutOrDefault()),
		SubscriptionAcknowledgements: acks,
	}

	resp, err := uaservices.Call[uaservices.PublishResponse](e.sess.Dispatcher(), req, e.cfg.publishTimeoutOrDefault())
	if err != nil {
		e.handlePublishError(err, acks)
		return
	}

	if resp.Header.ServiceResult.IsBad() {
		e.requeueAcks(acks)
		e.handlePublishStatus(resp.Header.ServiceResult)
		return
	}

	e.dispatch(resp)
}

// drainAcksLocked collects pending acknowledgements across every
// subscription into one slice, the shape Publish expects (spec §4.7).
// Caller holds e.mu.
func (e *Engine) drainAcksLocked() []uaservices.SubscriptionAcknowledgement {
	var acks []uaservices.SubscriptionAcknowledgement
	for _, sub := range e.subs {
		acks = append(acks, sub.drainAcks()...)
	}
	return acks
}

// requeueAcks puts acks back on their subscriptions after a failed
// Publish round trip, so the next attempt still reports them.
func (e *Engine) requeueAcks(acks []uaservices.SubscriptionAcknowledgement) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, a := range acks {
		if sub, ok := e.subs[a.SubscriptionID]; ok {
			sub.requeueAck(a)
		}
	}
}

func (e *Engine) handlePublishError(err error, acks []uaservices.SubscriptionAcknowledgement) {
	e.requeueAcks(acks)

	var uerr *uaerr.Error
	if errors.As(err, &uerr) && uerr.Kind == uaerr.Service {
		e.handlePublishStatus(ua.StatusCode(uerr.Status))
		return
	}

	if e.log != nil {
		e.log.Warnf("publish failed, retrying: %v", err)
	}
}

func (e *Engine) handlePublishStatus(status ua.StatusCode) {
	switch status {
	case ua.StatusBadTooManyPublishRequests:
		e.mu.Lock()
		if e.target > 0 {
			e.target--
		}
		e.mu.Unlock()
		if e.log != nil {
			e.log.Warnf("publish: server reports too many outstanding requests, target reduced")
		}
	case ua.StatusBadSessionClosed, ua.StatusBadSessionIdInvalid:
		if e.log != nil {
			e.log.Warnf("publish: session gone (%#08x), stopping publish loop", uint32(status))
		}
		e.Close()
	default:
		if status != ua.StatusGood && e.log != nil {
			e.log.Warnf("publish: response carried status %#08x", uint32(status))
		}
	}
}

func (e *Engine) dispatch(resp uaservices.PublishResponse) {
	e.mu.Lock()
	sub, ok := e.subs[resp.SubscriptionID]
	e.mu.Unlock()
	if !ok {
		if e.log != nil {
			e.log.Warnf("publish: notification for unknown or deleted subscription %d", resp.SubscriptionID)
		}
		return
	}

	sub.receive(resp.NotificationMessage)
}

// deliverNotification decodes every ExtensionObject inside msg and
// routes it to a DataChange or Event callback by ClientHandle (spec
// §4.7).
func (e *Engine) deliverNotification(sub *Subscription, msg uaservices.NotificationMessage) {
	for _, obj := range msg.NotificationData {
		decoded, err := ua.DecodeTyped(ua.DefaultRegistry, obj)
		if err != nil {
			if e.log != nil {
				e.log.Warnf("subscription %d: undecodable notification: %v", sub.id, err)
			}
			continue
		}

		switch n := decoded.(type) {
		case uaservices.DataChangeNotification:
			for _, item := range n.MonitoredItems {
				sub.deliverDataChange(item.ClientHandle, item.Value)
			}
		case uaservices.EventNotificationList:
			for _, ev := range n.Events {
				sub.deliverEvent(ev.ClientHandle, ev.EventFields)
			}
		case uaservices.StatusChangeNotification:
			if e.log != nil {
				e.log.Warnf("subscription %d: status change %#08x", sub.id, uint32(n.Status))
			}
		default:
			if e.log != nil {
				e.log.Warnf("subscription %d: unrecognized notification type %T", sub.id, decoded)
			}
		}
	}
}
