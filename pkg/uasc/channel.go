package uasc

import (
	"crypto/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foundry-iiot/opcua/pkg/ua"
	"github.com/foundry-iiot/opcua/pkg/uacrypto"
	"github.com/foundry-iiot/opcua/pkg/uaerr"
	"github.com/foundry-iiot/opcua/pkg/uatransport"
	"github.com/pion/logging"
)

// clientProtocolVersion is the OPC UA Binary protocol version this
// client speaks.
const clientProtocolVersion = 0

// IncomingMessage is one decoded, verified, decrypted MSG payload
// delivered to the channel's owner (normally pkg/uaservices's
// dispatcher loop).
type IncomingMessage struct {
	TypeID    ua.NodeId
	RequestID uint32
	Body      []byte
}

// securityToken bundles one security token's id, derived keys, and
// independent send/receive sequence-number state.
type securityToken struct {
	tokenID   uint32
	keys      uacrypto.ChannelKeys
	sendSeq   atomic.Uint32
	validator *SequenceValidator
}

// Channel is an OPC UA SecureChannel: HEL/ACK negotiation, the OPN
// asymmetric handshake, and symmetric per-message framing over one
// Transport connection. Exactly one goroutine (the internal read
// loop) owns the socket for reads after Open returns; Send is safe
// for concurrent callers behind an internal mutex (spec §5).
type Channel struct {
	cfg   Config
	conn  *uatransport.Conn
	suite uacrypto.Suite
	log   logging.LeveledLogger

	mu        sync.Mutex
	state     State
	channelID uint32
	current   *securityToken
	previous  *securityToken

	receiveBufferSize uint32
	sendBufferSize    uint32

	sendMu    sync.Mutex
	requestID atomic.Uint32

	messages chan IncomingMessage
	errs     chan error

	renewStop chan struct{}
	renewDone chan struct{}

	closeOnce sync.Once
}

// NewChannel validates cfg and returns an unopened Channel.
func NewChannel(cfg Config) (*Channel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	suite, err := uacrypto.Lookup(cfg.SecurityPolicyURI)
	if err != nil {
		return nil, err
	}
	c := &Channel{
		cfg:      cfg,
		suite:    suite,
		state:    StateClosed,
		messages: make(chan IncomingMessage, 16),
		errs:     make(chan error, 1),
	}
	if cfg.LoggerFactory != nil {
		c.log = cfg.LoggerFactory.NewLogger("uasc.channel")
	}
	return c, nil
}

// Messages returns the channel of decoded symmetric MSG payloads.
// It is closed when the channel fails or is closed.
func (c *Channel) Messages() <-chan IncomingMessage { return c.messages }

// Errors returns the channel's terminal error, if any, after
// Messages() closes.
func (c *Channel) Errors() <-chan error { return c.errs }

// State returns the channel's current lifecycle state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open performs the HEL/ACK handshake followed by an OPN Issue, then
// starts the background read loop and renewal goroutine (spec §4.4
// steps 1-5, 7).
func (c *Channel) Open() error {
	conn, err := uatransport.NewConn(c.cfg.EndpointURL, uatransport.Config{LoggerFactory: c.cfg.LoggerFactory})
	if err != nil {
		return err
	}
	if err := conn.Connect(c.cfg.DialTimeout); err != nil {
		return err
	}
	c.conn = conn

	c.setState(StateHelloSent)
	if err := c.sendHello(); err != nil {
		c.conn.Close()
		return err
	}
	if err := c.recvAck(); err != nil {
		c.conn.Close()
		return err
	}
	c.setState(StateAcknowledged)

	c.setState(StateOpening)
	if err := c.openChannel(RequestTypeIssue); err != nil {
		c.conn.Close()
		return err
	}
	c.setState(StateOpen)

	c.renewStop = make(chan struct{})
	c.renewDone = make(chan struct{})
	go c.readLoop()
	go c.renewLoop()
	return nil
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Channel) sendHello() error {
	hello := uatransport.HelloMessage{
		ProtocolVersion:   clientProtocolVersion,
		ReceiveBufferSize: uatransport.MinBufferSize,
		SendBufferSize:    uatransport.MinBufferSize,
		MaxMessageSize:    0,
		MaxChunkCount:     0,
		EndpointURL:       c.cfg.EndpointURL,
	}
	return c.conn.Send(uatransport.BuildHelloChunk(hello))
}

func (c *Channel) recvAck() error {
	h, err := c.conn.ReceiveHeader()
	if err != nil {
		return err
	}
	if h.MessageType == uatransport.MessageTypeERR {
		return c.decodeAndReturnErr(h)
	}
	if h.MessageType != uatransport.MessageTypeACK {
		return uaerr.FramingErr("expected ACK, got message type %s", h.MessageType)
	}
	body, err := c.conn.Receive(int(h.BodySize()))
	if err != nil {
		return err
	}
	ack, err := uatransport.DecodeAckMessage(body)
	if err != nil {
		return err
	}
	c.receiveBufferSize = ack.ReceiveBufferSize
	c.sendBufferSize = ack.SendBufferSize
	return nil
}

func (c *Channel) decodeAndReturnErr(h uatransport.ChunkHeader) error {
	body, err := c.conn.Receive(int(h.BodySize()))
	if err != nil {
		return err
	}
	em, err := uatransport.DecodeErrorMessage(body)
	if err != nil {
		return err
	}
	return uaerr.WithStatus(uaerr.StatusCode(em.Status), "server sent ERR: %s", em.Reason)
}

// generateNonce returns a random nonce sized to the suite's symmetric
// key length, or nil when the suite derives no keys (None).
func generateNonce(suite uacrypto.Suite) ([]byte, error) {
	n := suite.SymKeySize()
	if n == 0 {
		return nil, nil
	}
	nonce := make([]byte, n)
	if _, err := rand.Read(nonce); err != nil {
		return nil, uaerr.CryptoErr("generate nonce: %v", err)
	}
	return nonce, nil
}

// openChannel runs one asymmetric OPN exchange (Issue or Renew) and
// installs the resulting security token (spec §4.4 steps 3-5).
func (c *Channel) openChannel(reqType RequestType) error {
	clientNonce, err := generateNonce(c.suite)
	if err != nil {
		return err
	}

	req := OpenSecureChannelRequest{
		ClientProtocolVersion: clientProtocolVersion,
		RequestType:           reqType,
		SecurityMode:          wireSecurityMode(c.cfg.SecurityMode),
		ClientNonce:           clientNonce,
		RequestedLifetime:     uint32(c.cfg.requestedLifetimeOrDefault() / time.Millisecond),
	}

	var channelID uint32
	if reqType == RequestTypeRenew {
		c.mu.Lock()
		channelID = c.channelID
		c.mu.Unlock()
	}

	chunk, err := c.buildOPNRequestChunk(channelID, req)
	if err != nil {
		return err
	}

	c.sendMu.Lock()
	sendErr := c.conn.Send(chunk)
	c.sendMu.Unlock()
	if sendErr != nil {
		return sendErr
	}

	resp, serverNonce, err := c.recvOPNResponse()
	if err != nil {
		return err
	}

	if c.cfg.Validator != nil && c.cfg.RemoteCertificate != nil {
		if err := c.cfg.Validator.Validate(c.cfg.RemoteCertificate); err != nil {
			return err
		}
	}

	keys, err := c.suite.DeriveKeys(clientNonce, serverNonce)
	if err != nil {
		return err
	}

	newToken := &securityToken{tokenID: resp.SecurityToken.TokenID, keys: keys, validator: NewSequenceValidator()}

	c.mu.Lock()
	c.channelID = resp.SecurityToken.ChannelID
	if reqType == RequestTypeRenew {
		c.previous = c.current
	}
	c.current = newToken
	c.mu.Unlock()

	if c.log != nil {
		c.log.Infof("secure channel %s: channelId=%d tokenId=%d lifetime=%dms", reqType, c.channelID, newToken.tokenID, resp.SecurityToken.RevisedLifetime)
	}
	return nil
}

func wireSecurityMode(mode uacrypto.SecurityMode) uint32 {
	switch mode {
	case uacrypto.ModeSign:
		return wireModeSign
	case uacrypto.ModeSignAndEncrypt:
		return wireModeSignAndEncrypt
	default:
		return wireModeNone
	}
}

func (s RequestType) String() string {
	if s == RequestTypeRenew {
		return "renew"
	}
	return "issue"
}

// buildOPNRequestChunk frames req as a complete OPN chunk (spec §4.4
// step 3 / §6).
func (c *Channel) buildOPNRequestChunk(channelID uint32, req OpenSecureChannelRequest) ([]byte, error) {
	header := AsymmetricSecurityHeader{SecurityPolicyURI: c.cfg.SecurityPolicyURI}
	if c.cfg.SecurityMode != uacrypto.ModeNone {
		header.SenderCertificate = c.cfg.LocalKeyPair.Certificate.Raw
		header.ReceiverCertificateThumbprint = certThumbprint(c.cfg.RemoteCertificate.Raw)
	}

	reqTypeID := req.EncodingTypeID()
	plain := ua.NewEncoder()
	SequenceHeader{SequenceNumber: 1, RequestID: c.requestID.Add(1)}.Encode(plain)
	plain.WriteNodeId(reqTypeID)
	if err := req.Encode(plain); err != nil {
		return nil, err
	}
	plaintext := plain.Bytes()

	var ciphertext []byte
	if c.cfg.SecurityMode == uacrypto.ModeSignAndEncrypt {
		blockSize := c.suite.AsymPlaintextBlockSize(c.cfg.RemoteCertificate)
		keyBytes := c.suite.AsymCiphertextBlockSize(c.cfg.RemoteCertificate)
		padded := uacrypto.PadAsymmetric(plaintext, blockSize, keyBytes)
		ct, err := c.suite.EncryptAsym(padded, c.cfg.RemoteCertificate)
		if err != nil {
			return nil, err
		}
		ciphertext = ct
	} else {
		ciphertext = plaintext
	}

	hdrEnc := ua.NewEncoder()
	hdrEnc.WriteUint32(channelID)
	header.Encode(hdrEnc)
	headerBytes := hdrEnc.Bytes()

	body := append(append([]byte{}, headerBytes...), ciphertext...)

	if c.cfg.SecurityMode != uacrypto.ModeNone {
		sig, err := c.suite.SignAsym(body, c.cfg.LocalKeyPair)
		if err != nil {
			return nil, err
		}
		body = append(body, sig...)
	}

	h := uatransport.ChunkHeader{MessageType: uatransport.MessageTypeOPN, ChunkType: uatransport.ChunkFinal, MessageSize: uint32(uatransport.HeaderSize + len(body))}
	return append(h.Encode(), body...), nil
}

// recvOPNResponse reads and decodes one OPN response chunk (spec
// §4.4 step 4).
func (c *Channel) recvOPNResponse() (OpenSecureChannelResponse, []byte, error) {
	h, err := c.conn.ReceiveHeader()
	if err != nil {
		return OpenSecureChannelResponse{}, nil, err
	}
	if h.MessageType == uatransport.MessageTypeERR {
		return OpenSecureChannelResponse{}, nil, c.decodeAndReturnErr(h)
	}
	if h.MessageType != uatransport.MessageTypeOPN {
		return OpenSecureChannelResponse{}, nil, uaerr.FramingErr("expected OPN response, got %s", h.MessageType)
	}
	body, err := c.conn.Receive(int(h.BodySize()))
	if err != nil {
		return OpenSecureChannelResponse{}, nil, err
	}

	d := ua.NewDecoder(body)
	if _, err := d.ReadUint32(); err != nil { // channelId
		return OpenSecureChannelResponse{}, nil, err
	}
	secHeader, err := DecodeAsymmetricSecurityHeader(d)
	if err != nil {
		return OpenSecureChannelResponse{}, nil, err
	}

	remoteCert := c.cfg.RemoteCertificate
	if len(secHeader.SenderCertificate) > 0 {
		if parsed, perr := parseCertificate(secHeader.SenderCertificate); perr == nil {
			remoteCert = parsed
		}
	}

	rest := d.Rest()
	encryptedMode := c.cfg.SecurityMode == uacrypto.ModeSignAndEncrypt
	signed := c.cfg.SecurityMode != uacrypto.ModeNone

	var ciphertext, signature []byte
	if signed {
		sigSize := c.suite.AsymSignatureSize(c.cfg.LocalKeyPair)
		if len(rest) < sigSize {
			return OpenSecureChannelResponse{}, nil, uaerr.FramingErr("OPN response shorter than expected signature size")
		}
		ciphertext = rest[:len(rest)-sigSize]
		signature = rest[len(rest)-sigSize:]

		signedData := body[:len(body)-len(signature)]
		if err := c.suite.VerifyAsym(signedData, signature, remoteCert); err != nil {
			return OpenSecureChannelResponse{}, nil, err
		}
	} else {
		ciphertext = rest
	}

	var plaintext []byte
	if encryptedMode {
		pt, err := c.suite.DecryptAsym(ciphertext, c.cfg.LocalKeyPair)
		if err != nil {
			return OpenSecureChannelResponse{}, nil, err
		}
		unpadded, err := uacrypto.UnpadAsymmetric(pt, c.cfg.LocalKeyPair.PrivateKey.Size())
		if err != nil {
			return OpenSecureChannelResponse{}, nil, err
		}
		plaintext = unpadded
	} else {
		plaintext = ciphertext
	}

	pd := ua.NewDecoder(plaintext)
	if _, err := DecodeSequenceHeader(pd); err != nil {
		return OpenSecureChannelResponse{}, nil, err
	}
	typeID, err := pd.ReadNodeId()
	if err != nil {
		return OpenSecureChannelResponse{}, nil, err
	}
	if typeID.Equal(ua.ServiceFaultTypeID) {
		fault, err := ua.DecodeServiceFault(pd)
		if err != nil {
			return OpenSecureChannelResponse{}, nil, err
		}
		return OpenSecureChannelResponse{}, nil, fault.(ua.ServiceFault).AsServiceError()
	}
	if !typeID.Equal(OpenSecureChannelResponseTypeID) {
		return OpenSecureChannelResponse{}, nil, uaerr.FramingErr("unexpected OPN response TypeId %s", typeID)
	}
	decoded, err := DecodeOpenSecureChannelResponse(pd)
	if err != nil {
		return OpenSecureChannelResponse{}, nil, err
	}
	resp := decoded.(OpenSecureChannelResponse)
	return resp, resp.ServerNonce, nil
}

// NextRequestID allocates the next monotonically increasing request
// id. Callers that need to register a response waiter before sending
// (pkg/uaservices's Dispatcher) call this first, then pass the id to
// SendMessage so no response can race the waiter's registration.
func (c *Channel) NextRequestID() uint32 { return c.requestID.Add(1) }

// SendMessage encodes (typeID, body) as one symmetric MSG chunk tagged
// with requestID and writes it to the connection (spec §4.4
// "Per-service send"). Only single-chunk messages are supported: the
// negotiated send buffer size bounds message size and an oversized
// message is a Framing error rather than being split into continuation
// chunks, since every service body this client builds fits
// comfortably within the minimum 8192-byte buffer.
func (c *Channel) SendMessage(requestID uint32, typeID ua.NodeId, body []byte) error {
	c.mu.Lock()
	state := c.state
	token := c.current
	channelID := c.channelID
	c.mu.Unlock()
	if state != StateOpen {
		return uaerr.ClosedErr("channel is not open (state=%s)", state)
	}
	if token == nil {
		return uaerr.ClosedErr("channel has no active security token")
	}

	seqNum := token.sendSeq.Add(1)

	plain := ua.NewEncoder()
	SequenceHeader{SequenceNumber: seqNum, RequestID: requestID}.Encode(plain)
	plain.WriteNodeId(typeID)
	plain.WriteRaw(body)
	plaintext := plain.Bytes()

	var ciphertext []byte
	if c.cfg.SecurityMode == uacrypto.ModeSignAndEncrypt {
		padded := uacrypto.PadSymmetric(plaintext, c.suite.SymBlockSize())
		ct, err := c.suite.EncryptSym(padded, token.keys.ClientEncryptingKey, token.keys.ClientIV)
		if err != nil {
			return err
		}
		ciphertext = ct
	} else {
		ciphertext = plaintext
	}

	hdrEnc := ua.NewEncoder()
	SymmetricSecurityHeader{ChannelID: channelID, TokenID: token.tokenID}.Encode(hdrEnc)
	frameBody := append(hdrEnc.Bytes(), ciphertext...)

	if c.cfg.SecurityMode != uacrypto.ModeNone {
		sig, err := c.suite.SignSym(frameBody, token.keys.ClientSigningKey)
		if err != nil {
			return err
		}
		frameBody = append(frameBody, sig...)
	}

	if c.sendBufferSize != 0 && uint32(uatransport.HeaderSize+len(frameBody)) > c.sendBufferSize {
		return uaerr.FramingErr("message size %d exceeds negotiated send buffer %d", uatransport.HeaderSize+len(frameBody), c.sendBufferSize)
	}

	h := uatransport.ChunkHeader{MessageType: uatransport.MessageTypeMSG, ChunkType: uatransport.ChunkFinal, MessageSize: uint32(uatransport.HeaderSize + len(frameBody))}
	chunk := append(h.Encode(), frameBody...)

	c.sendMu.Lock()
	err := c.conn.Send(chunk)
	c.sendMu.Unlock()
	return err
}

// readLoop is the channel's sole reader after Open returns. It
// demultiplexes MSG payloads onto Messages(), handles OPN renewal
// responses internally, and treats ERR/CLO/framing/crypto failures as
// terminal for the channel.
func (c *Channel) readLoop() {
	defer close(c.messages)
	for {
		h, err := c.conn.ReceiveHeader()
		if err != nil {
			c.fail(err)
			return
		}
		switch h.MessageType {
		case uatransport.MessageTypeMSG:
			msg, err := c.readMSG(h)
			if err != nil {
				c.fail(err)
				return
			}
			select {
			case c.messages <- msg:
			case <-c.renewStop:
				return
			}
		case uatransport.MessageTypeCLO:
			if _, err := c.conn.Receive(int(h.BodySize())); err != nil {
				c.fail(err)
				return
			}
			c.setState(StateClosed)
			return
		case uatransport.MessageTypeERR:
			c.fail(c.decodeAndReturnErr(h))
			return
		default:
			c.fail(uaerr.FramingErr("unexpected message type %s on an open channel", h.MessageType))
			return
		}
	}
}

func (c *Channel) readMSG(h uatransport.ChunkHeader) (IncomingMessage, error) {
	body, err := c.conn.Receive(int(h.BodySize()))
	if err != nil {
		return IncomingMessage{}, err
	}
	d := ua.NewDecoder(body)
	symHeader, err := DecodeSymmetricSecurityHeader(d)
	if err != nil {
		return IncomingMessage{}, err
	}

	c.mu.Lock()
	token := c.tokenFor(symHeader.TokenID)
	c.mu.Unlock()
	if token == nil {
		return IncomingMessage{}, uaerr.CryptoErr("received message for unknown tokenId %d", symHeader.TokenID)
	}

	rest := d.Rest()
	var ciphertext, signature []byte
	if c.cfg.SecurityMode != uacrypto.ModeNone {
		sigSize := c.suite.SymSignatureSize()
		if len(rest) < sigSize {
			return IncomingMessage{}, uaerr.FramingErr("MSG body shorter than expected signature size")
		}
		ciphertext = rest[:len(rest)-sigSize]
		signature = rest[len(rest)-sigSize:]
		signedData := body[:len(body)-len(signature)]
		if err := c.suite.VerifySym(signedData, signature, token.keys.ServerSigningKey); err != nil {
			return IncomingMessage{}, err
		}
	} else {
		ciphertext = rest
	}

	var plaintext []byte
	if c.cfg.SecurityMode == uacrypto.ModeSignAndEncrypt {
		pt, err := c.suite.DecryptSym(ciphertext, token.keys.ServerEncryptingKey, token.keys.ServerIV)
		if err != nil {
			return IncomingMessage{}, err
		}
		unpadded, err := uacrypto.UnpadSymmetric(pt, c.suite.SymBlockSize())
		if err != nil {
			return IncomingMessage{}, err
		}
		plaintext = unpadded
	} else {
		plaintext = ciphertext
	}

	pd := ua.NewDecoder(plaintext)
	seqHeader, err := DecodeSequenceHeader(pd)
	if err != nil {
		return IncomingMessage{}, err
	}
	if err := token.validator.Validate(seqHeader.SequenceNumber); err != nil {
		return IncomingMessage{}, err
	}

	typeID, err := pd.ReadNodeId()
	if err != nil {
		return IncomingMessage{}, err
	}

	c.mu.Lock()
	if c.previous != nil && token == c.current {
		c.previous = nil
	}
	c.mu.Unlock()

	return IncomingMessage{TypeID: typeID, RequestID: seqHeader.RequestID, Body: pd.Rest()}, nil
}

// tokenFor returns the current or previous security token matching
// tokenID, honoring the "both tokens remain valid across a renewal"
// rule (spec §4.4 Renewal). Callers hold c.mu.
func (c *Channel) tokenFor(tokenID uint32) *securityToken {
	if c.current != nil && c.current.tokenID == tokenID {
		return c.current
	}
	if c.previous != nil && c.previous.tokenID == tokenID {
		return c.previous
	}
	return nil
}

func (c *Channel) fail(err error) {
	c.setState(StateClosed)
	select {
	case c.errs <- err:
	default:
	}
	if c.log != nil {
		c.log.Errorf("channel failed: %v", err)
	}
}

// renewLoop wakes at ~75% of the current token's revised lifetime and
// issues a Renew OPN exchange (spec §4.4 Renewal).
func (c *Channel) renewLoop() {
	defer close(c.renewDone)
	lifetime := c.cfg.requestedLifetimeOrDefault()
	wait := time.Duration(float64(lifetime) * 0.75)
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-c.renewStop:
			return
		case <-timer.C:
			if c.State() != StateOpen {
				return
			}
			if err := c.openChannel(RequestTypeRenew); err != nil {
				c.fail(err)
				return
			}
			timer.Reset(wait)
		}
	}
}

// Close sends a best-effort CLO chunk, stops the renewal goroutine,
// and closes the underlying connection. Idempotent.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		wasOpen := c.state == StateOpen
		c.state = StateClosing
		c.mu.Unlock()

		if wasOpen && c.conn != nil {
			// Best-effort per spec §5 scoped-acquisition teardown:
			// a network failure here is swallowed after one attempt.
			chunk := buildCloseChunk()
			c.sendMu.Lock()
			_ = c.conn.Send(chunk)
			c.sendMu.Unlock()
		}
		if c.renewStop != nil {
			close(c.renewStop)
		}
		if c.conn != nil {
			err = c.conn.Close()
		}
		c.setState(StateClosed)
	})
	return err
}

func buildCloseChunk() []byte {
	body := ua.NewEncoder()
	_ = CloseSecureChannelRequest{}.Encode(body) // never returns an error
	h := uatransport.ChunkHeader{MessageType: uatransport.MessageTypeCLO, ChunkType: uatransport.ChunkFinal, MessageSize: uint32(uatransport.HeaderSize + body.Len())}
	return append(h.Encode(), body.Bytes()...)
}
