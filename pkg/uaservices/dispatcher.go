package uaservices

import (
	"sync"
	"time"

	"github.com/foundry-iiot/opcua/pkg/ua"
	"github.com/foundry-iiot/opcua/pkg/uaerr"
	"github.com/foundry-iiot/opcua/pkg/uasc"
	"github.com/pion/logging"
)

// DefaultTimeoutHint is used for calls that don't specify their own
// timeout (spec §5).
const DefaultTimeoutHint = 15 * time.Second

// pendingResponse is what a waiter receives: the decoded TypeId and
// raw body of the MSG the channel delivered for its requestId.
type pendingResponse struct {
	typeID ua.NodeId
	body   []byte
}

// Dispatcher multiplexes service calls over one pkg/uasc.Channel. A
// caller allocates a requestId via Channel.NextRequestID, registers a
// waiter for it, and only then sends — eliminating the race where the
// channel's own read loop could deliver a response before the waiter
// exists (spec §4.5, generalizing backkem/matter's
// pkg/exchange.Manager exchange table to request ids instead of
// exchange ids, and dropping MRP retransmission: this client never
// runs over a lossy transport).
type Dispatcher struct {
	ch  *uasc.Channel
	log logging.LeveledLogger

	mu      sync.Mutex
	waiters map[uint32]chan pendingResponse
	closed  bool

	done chan struct{}
}

// NewDispatcher starts the dispatcher's background demux loop over ch,
// which must already be open.
func NewDispatcher(ch *uasc.Channel, loggerFactory logging.LoggerFactory) *Dispatcher {
	d := &Dispatcher{
		ch:      ch,
		waiters: make(map[uint32]chan pendingResponse),
		done:    make(chan struct{}),
	}
	if loggerFactory != nil {
		d.log = loggerFactory.NewLogger("uaservices.dispatcher")
	}
	go d.demux()
	return d
}

// Done is closed once the underlying channel fails or closes and every
// outstanding waiter has been failed.
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

func (d *Dispatcher) demux() {
	defer close(d.done)
	for msg := range d.ch.Messages() {
		d.deliver(msg.RequestID, msg.TypeID, msg.Body)
	}

	var err error
	select {
	case err = <-d.ch.Errors():
	default:
		err = uaerr.ClosedErr("channel closed")
	}
	d.failAll(err)
}

func (d *Dispatcher) deliver(requestID uint32, typeID ua.NodeId, body []byte) {
	d.mu.Lock()
	w, ok := d.waiters[requestID]
	if ok {
		delete(d.waiters, requestID)
	}
	d.mu.Unlock()
	if !ok {
		// No waiter: either a late response past its local timeout, or
		// an unsolicited message this client does not expect. Both are
		// silently dropped per spec §5 "Cancellation".
		if d.log != nil {
			d.log.Warnf("dropping response for unknown requestId %d (type=%s)", requestID, typeID)
		}
		return
	}
	w <- pendingResponse{typeID: typeID, body: body}
}

func (d *Dispatcher) failAll(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for id, w := range d.waiters {
		close(w)
		delete(d.waiters, id)
	}
	_ = err
}

func (d *Dispatcher) register(requestID uint32) (chan pendingResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, uaerr.ClosedErr("dispatcher is closed")
	}
	w := make(chan pendingResponse, 1)
	d.waiters[requestID] = w
	return w, nil
}

func (d *Dispatcher) unregister(requestID uint32) {
	d.mu.Lock()
	delete(d.waiters, requestID)
	d.mu.Unlock()
}

// Call sends req and waits up to timeout (DefaultTimeoutHint if zero)
// for a response whose decoded type matches Resp, or for a
// ServiceFault naming a StatusCode, whichever arrives first (spec
// §4.5, §5).
func Call[Resp ua.BinaryCodec](d *Dispatcher, req ua.BinaryCodec, timeout time.Duration) (Resp, error) {
	var zero Resp
	if timeout <= 0 {
		timeout = DefaultTimeoutHint
	}

	reqID := d.ch.NextRequestID()
	waiter, err := d.register(reqID)
	if err != nil {
		return zero, err
	}

	body := ua.NewEncoder()
	if err := req.Encode(body); err != nil {
		d.unregister(reqID)
		return zero, err
	}

	if err := d.ch.SendMessage(reqID, req.EncodingTypeID(), body.Bytes()); err != nil {
		d.unregister(reqID)
		return zero, err
	}

	select {
	case resp, ok := <-waiter:
		if !ok {
			return zero, uaerr.ClosedErr("channel closed while waiting for response to requestId %d", reqID)
		}
		return decodeResponse[Resp](resp)
	case <-time.After(timeout):
		d.unregister(reqID)
		return zero, uaerr.New(uaerr.Transport, "timed out waiting %s for response to requestId %d", timeout, reqID)
	}
}

func decodeResponse[Resp ua.BinaryCodec](resp pendingResponse) (Resp, error) {
	var zero Resp
	if resp.typeID.Equal(ua.ServiceFaultTypeID) {
		decoded, err := ua.DecodeServiceFault(ua.NewDecoder(resp.body))
		if err != nil {
			return zero, err
		}
		return zero, decoded.(ua.ServiceFault).AsServiceError()
	}

	decoded, err := ua.DecodeBody(ua.DefaultRegistry, resp.typeID, resp.body)
	if err != nil {
		return zero, err
	}
	typed, ok := decoded.(Resp)
	if !ok {
		return zero, uaerr.FramingErr("unexpected response type %s for requestId", resp.typeID)
	}
	return typed, nil
}
