package uaservices

import "github.com/foundry-iiot/opcua/pkg/ua"

var (
	CreateSubscriptionRequestTypeID  = ua.NewNumericNodeId(0, 787)
	CreateSubscriptionResponseTypeID = ua.NewNumericNodeId(0, 790)
	ModifySubscriptionRequestTypeID  = ua.NewNumericNodeId(0, 793)
	ModifySubscriptionResponseTypeID = ua.NewNumericNodeId(0, 796)
	SetPublishingModeRequestTypeID   = ua.NewNumericNodeId(0, 799)
	SetPublishingModeResponseTypeID  = ua.NewNumericNodeId(0, 802)
	DeleteSubscriptionsRequestTypeID = ua.NewNumericNodeId(0, 845)
	DeleteSubscriptionsResponseTypeID = ua.NewNumericNodeId(0, 848)

	CreateMonitoredItemsRequestTypeID  = ua.NewNumericNodeId(0, 751)
	CreateMonitoredItemsResponseTypeID = ua.NewNumericNodeId(0, 754)
	DeleteMonitoredItemsRequestTypeID  = ua.NewNumericNodeId(0, 778)
	DeleteMonitoredItemsResponseTypeID = ua.NewNumericNodeId(0, 781)

	PublishRequestTypeID    = ua.NewNumericNodeId(0, 826)
	PublishResponseTypeID   = ua.NewNumericNodeId(0, 829)
	RepublishRequestTypeID  = ua.NewNumericNodeId(0, 832)
	RepublishResponseTypeID = ua.NewNumericNodeId(0, 835)
)

// CreateSubscriptionRequest negotiates a publishing interval, lifetime
// and keep-alive counts for a new subscription (spec §4.7).
type CreateSubscriptionRequest struct {
	Header                     RequestHeader
	RequestedPublishingInterval float64
	RequestedLifetimeCount     uint32
	RequestedMaxKeepAliveCount uint32
	MaxNotificationsPerPublish uint32
	PublishingEnabled          bool
	Priority                   byte
}

func (r CreateSubscriptionRequest) EncodingTypeID() ua.NodeId { return CreateSubscriptionRequestTypeID }

func (r CreateSubscriptionRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	e.WriteFloat64(r.RequestedPublishingInterval)
	e.WriteUint32(r.RequestedLifetimeCount)
	e.WriteUint32(r.RequestedMaxKeepAliveCount)
	e.WriteUint32(r.MaxNotificationsPerPublish)
	e.WriteBoolean(r.PublishingEnabled)
	e.WriteByte(r.Priority)
	return nil
}

func DecodeCreateSubscriptionRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r CreateSubscriptionRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.RequestedPublishingInterval, err = d.ReadFloat64(); err != nil {
		return nil, err
	}
	if r.RequestedLifetimeCount, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.RequestedMaxKeepAliveCount, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.MaxNotificationsPerPublish, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.PublishingEnabled, err = d.ReadBoolean(); err != nil {
		return nil, err
	}
	if r.Priority, err = d.ReadByte(); err != nil {
		return nil, err
	}
	return r, nil
}

type CreateSubscriptionResponse struct {
	Header                     ResponseHeader
	SubscriptionID             uint32
	RevisedPublishingInterval float64
	RevisedLifetimeCount       uint32
	RevisedMaxKeepAliveCount   uint32
}

func (r CreateSubscriptionResponse) EncodingTypeID() ua.NodeId { return CreateSubscriptionResponseTypeID }

func (r CreateSubscriptionResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	e.WriteUint32(r.SubscriptionID)
	e.WriteFloat64(r.RevisedPublishingInterval)
	e.WriteUint32(r.RevisedLifetimeCount)
	e.WriteUint32(r.RevisedMaxKeepAliveCount)
	return nil
}

func DecodeCreateSubscriptionResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r CreateSubscriptionResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.SubscriptionID, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.RevisedPublishingInterval, err = d.ReadFloat64(); err != nil {
		return nil, err
	}
	if r.RevisedLifetimeCount, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.RevisedMaxKeepAliveCount, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	return r, nil
}

// ModifySubscriptionRequest renegotiates the timing of an existing
// subscription.
type ModifySubscriptionRequest struct {
	Header                     RequestHeader
	SubscriptionID             uint32
	RequestedPublishingInterval float64
	RequestedLifetimeCount     uint32
	RequestedMaxKeepAliveCount uint32
	MaxNotificationsPerPublish uint32
	Priority                   byte
}

func (r ModifySubscriptionRequest) EncodingTypeID() ua.NodeId { return ModifySubscriptionRequestTypeID }

func (r ModifySubscriptionRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	e.WriteUint32(r.SubscriptionID)
	e.WriteFloat64(r.RequestedPublishingInterval)
	e.WriteUint32(r.RequestedLifetimeCount)
	e.WriteUint32(r.RequestedMaxKeepAliveCount)
	e.WriteUint32(r.MaxNotificationsPerPublish)
	e.WriteByte(r.Priority)
	return nil
}

func DecodeModifySubscriptionRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r ModifySubscriptionRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.SubscriptionID, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.RequestedPublishingInterval, err = d.ReadFloat64(); err != nil {
		return nil, err
	}
	if r.RequestedLifetimeCount, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.RequestedMaxKeepAliveCount, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.MaxNotificationsPerPublish, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.Priority, err = d.ReadByte(); err != nil {
		return nil, err
	}
	return r, nil
}

type ModifySubscriptionResponse struct {
	Header                     ResponseHeader
	RevisedPublishingInterval float64
	RevisedLifetimeCount       uint32
	RevisedMaxKeepAliveCount   uint32
}

func (r ModifySubscriptionResponse) EncodingTypeID() ua.NodeId { return ModifySubscriptionResponseTypeID }

func (r ModifySubscriptionResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	e.WriteFloat64(r.RevisedPublishingInterval)
	e.WriteUint32(r.RevisedLifetimeCount)
	e.WriteUint32(r.RevisedMaxKeepAliveCount)
	return nil
}

func DecodeModifySubscriptionResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r ModifySubscriptionResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.RevisedPublishingInterval, err = d.ReadFloat64(); err != nil {
		return nil, err
	}
	if r.RevisedLifetimeCount, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.RevisedMaxKeepAliveCount, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	return r, nil
}

// SetPublishingModeRequest enables or disables publishing for one or
// more subscriptions without deleting them.
type SetPublishingModeRequest struct {
	Header          RequestHeader
	PublishingEnabled bool
	SubscriptionIds []uint32
}

func (r SetPublishingModeRequest) EncodingTypeID() ua.NodeId { return SetPublishingModeRequestTypeID }

func (r SetPublishingModeRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	e.WriteBoolean(r.PublishingEnabled)
	ua.WriteArray(e, r.SubscriptionIds, func(e *ua.Encoder, id uint32) { e.WriteUint32(id) })
	return nil
}

func DecodeSetPublishingModeRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r SetPublishingModeRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.PublishingEnabled, err = d.ReadBoolean(); err != nil {
		return nil, err
	}
	if r.SubscriptionIds, err = ua.ReadArray(d, func(d *ua.Decoder) (uint32, error) { return d.ReadUint32() }); err != nil {
		return nil, err
	}
	return r, nil
}

type SetPublishingModeResponse struct {
	Header          ResponseHeader
	Results         []ua.StatusCode
	DiagnosticInfos []ua.DiagnosticInfo
}

func (r SetPublishingModeResponse) EncodingTypeID() ua.NodeId { return SetPublishingModeResponseTypeID }

func (r SetPublishingModeResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	ua.WriteArray(e, r.Results, func(e *ua.Encoder, s ua.StatusCode) { e.WriteStatusCode(s) })
	return writeDiagnosticInfoArray(e, r.DiagnosticInfos)
}

func DecodeSetPublishingModeResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r SetPublishingModeResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.Results, err = ua.ReadArray(d, func(d *ua.Decoder) (ua.StatusCode, error) { return d.ReadStatusCode() }); err != nil {
		return nil, err
	}
	if r.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return r, nil
}

type DeleteSubscriptionsRequest struct {
	Header          RequestHeader
	SubscriptionIds []uint32
}

func (r DeleteSubscriptionsRequest) EncodingTypeID() ua.NodeId { return DeleteSubscriptionsRequestTypeID }

func (r DeleteSubscriptionsRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	ua.WriteArray(e, r.SubscriptionIds, func(e *ua.Encoder, id uint32) { e.WriteUint32(id) })
	return nil
}

func DecodeDeleteSubscriptionsRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r DeleteSubscriptionsRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.SubscriptionIds, err = ua.ReadArray(d, func(d *ua.Decoder) (uint32, error) { return d.ReadUint32() }); err != nil {
		return nil, err
	}
	return r, nil
}

type DeleteSubscriptionsResponse struct {
	Header          ResponseHeader
	Results         []ua.StatusCode
	DiagnosticInfos []ua.DiagnosticInfo
}

func (r DeleteSubscriptionsResponse) EncodingTypeID() ua.NodeId { return DeleteSubscriptionsResponseTypeID }

func (r DeleteSubscriptionsResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	ua.WriteArray(e, r.Results, func(e *ua.Encoder, s ua.StatusCode) { e.WriteStatusCode(s) })
	return writeDiagnosticInfoArray(e, r.DiagnosticInfos)
}

func DecodeDeleteSubscriptionsResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r DeleteSubscriptionsResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.Results, err = ua.ReadArray(d, func(d *ua.Decoder) (ua.StatusCode, error) { return d.ReadStatusCode() }); err != nil {
		return nil, err
	}
	if r.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return r, nil
}

// MonitoringParameters controls sampling and queuing for one
// monitored item.
type MonitoringParameters struct {
	ClientHandle     uint32
	SamplingInterval float64
	Filter           ua.ExtensionObject
	QueueSize        uint32
	DiscardOldest    bool
}

func (p MonitoringParameters) Encode(e *ua.Encoder) error {
	e.WriteUint32(p.ClientHandle)
	e.WriteFloat64(p.SamplingInterval)
	if err := e.WriteExtensionObject(p.Filter); err != nil {
		return err
	}
	e.WriteUint32(p.QueueSize)
	e.WriteBoolean(p.DiscardOldest)
	return nil
}

func decodeMonitoringParameters(d *ua.Decoder) (MonitoringParameters, error) {
	var p MonitoringParameters
	var err error
	if p.ClientHandle, err = d.ReadUint32(); err != nil {
		return p, err
	}
	if p.SamplingInterval, err = d.ReadFloat64(); err != nil {
		return p, err
	}
	if p.Filter, err = d.ReadExtensionObject(); err != nil {
		return p, err
	}
	if p.QueueSize, err = d.ReadUint32(); err != nil {
		return p, err
	}
	if p.DiscardOldest, err = d.ReadBoolean(); err != nil {
		return p, err
	}
	return p, nil
}

// MonitoredItemCreateRequest asks to monitor one attribute and routes
// its notifications to ClientHandle (spec §4.7).
type MonitoredItemCreateRequest struct {
	ItemToMonitor     ReadValueId
	MonitoringMode    uint32 // 0=Disabled 1=Sampling 2=Reporting
	RequestedParameters MonitoringParameters
}

func (r MonitoredItemCreateRequest) Encode(e *ua.Encoder) error {
	r.ItemToMonitor.Encode(e)
	e.WriteInt32(int32(r.MonitoringMode))
	return r.RequestedParameters.Encode(e)
}

func decodeMonitoredItemCreateRequest(d *ua.Decoder) (MonitoredItemCreateRequest, error) {
	var r MonitoredItemCreateRequest
	var err error
	if r.ItemToMonitor, err = decodeReadValueId(d); err != nil {
		return r, err
	}
	mode, err := d.ReadInt32()
	if err != nil {
		return r, err
	}
	r.MonitoringMode = uint32(mode)
	if r.RequestedParameters, err = decodeMonitoringParameters(d); err != nil {
		return r, err
	}
	return r, nil
}

type MonitoredItemCreateResult struct {
	StatusCode              ua.StatusCode
	MonitoredItemID         uint32
	RevisedSamplingInterval float64
	RevisedQueueSize        uint32
	FilterResult            ua.ExtensionObject
}

func (r MonitoredItemCreateResult) Encode(e *ua.Encoder) error {
	e.WriteStatusCode(r.StatusCode)
	e.WriteUint32(r.MonitoredItemID)
	e.WriteFloat64(r.RevisedSamplingInterval)
	e.WriteUint32(r.RevisedQueueSize)
	return e.WriteExtensionObject(r.FilterResult)
}

func decodeMonitoredItemCreateResult(d *ua.Decoder) (MonitoredItemCreateResult, error) {
	var r MonitoredItemCreateResult
	var err error
	if r.StatusCode, err = d.ReadStatusCode(); err != nil {
		return r, err
	}
	if r.MonitoredItemID, err = d.ReadUint32(); err != nil {
		return r, err
	}
	if r.RevisedSamplingInterval, err = d.ReadFloat64(); err != nil {
		return r, err
	}
	if r.RevisedQueueSize, err = d.ReadUint32(); err != nil {
		return r, err
	}
	if r.FilterResult, err = d.ReadExtensionObject(); err != nil {
		return r, err
	}
	return r, nil
}

type CreateMonitoredItemsRequest struct {
	Header             RequestHeader
	SubscriptionID     uint32
	TimestampsToReturn TimestampsToReturn
	ItemsToCreate      []MonitoredItemCreateRequest
}

func (r CreateMonitoredItemsRequest) EncodingTypeID() ua.NodeId { return CreateMonitoredItemsRequestTypeID }

func (r CreateMonitoredItemsRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	e.WriteUint32(r.SubscriptionID)
	e.WriteInt32(int32(r.TimestampsToReturn))
	if r.ItemsToCreate == nil {
		e.WriteArrayLength(-1)
		return nil
	}
	e.WriteArrayLength(len(r.ItemsToCreate))
	for _, it := range r.ItemsToCreate {
		if err := it.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

func DecodeCreateMonitoredItemsRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r CreateMonitoredItemsRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.SubscriptionID, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	ttr, err := d.ReadInt32()
	if err != nil {
		return nil, err
	}
	r.TimestampsToReturn = TimestampsToReturn(ttr)
	if r.ItemsToCreate, err = ua.ReadArray(d, decodeMonitoredItemCreateRequest); err != nil {
		return nil, err
	}
	return r, nil
}

type CreateMonitoredItemsResponse struct {
	Header          ResponseHeader
	Results         []MonitoredItemCreateResult
	DiagnosticInfos []ua.DiagnosticInfo
}

func (r CreateMonitoredItemsResponse) EncodingTypeID() ua.NodeId { return CreateMonitoredItemsResponseTypeID }

func (r CreateMonitoredItemsResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	if r.Results == nil {
		e.WriteArrayLength(-1)
	} else {
		e.WriteArrayLength(len(r.Results))
		for _, res := range r.Results {
			if err := res.Encode(e); err != nil {
				return err
			}
		}
	}
	return writeDiagnosticInfoArray(e, r.DiagnosticInfos)
}

func DecodeCreateMonitoredItemsResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r CreateMonitoredItemsResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.Results, err = ua.ReadArray(d, decodeMonitoredItemCreateResult); err != nil {
		return nil, err
	}
	if r.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return r, nil
}

type DeleteMonitoredItemsRequest struct {
	Header          RequestHeader
	SubscriptionID  uint32
	MonitoredItemIds []uint32
}

func (r DeleteMonitoredItemsRequest) EncodingTypeID() ua.NodeId { return DeleteMonitoredItemsRequestTypeID }

func (r DeleteMonitoredItemsRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	e.WriteUint32(r.SubscriptionID)
	ua.WriteArray(e, r.MonitoredItemIds, func(e *ua.Encoder, id uint32) { e.WriteUint32(id) })
	return nil
}

func DecodeDeleteMonitoredItemsRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r DeleteMonitoredItemsRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.SubscriptionID, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.MonitoredItemIds, err = ua.ReadArray(d, func(d *ua.Decoder) (uint32, error) { return d.ReadUint32() }); err != nil {
		return nil, err
	}
	return r, nil
}

type DeleteMonitoredItemsResponse struct {
	Header          ResponseHeader
	Results         []ua.StatusCode
	DiagnosticInfos []ua.DiagnosticInfo
}

func (r DeleteMonitoredItemsResponse) EncodingTypeID() ua.NodeId { return DeleteMonitoredItemsResponseTypeID }

func (r DeleteMonitoredItemsResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	ua.WriteArray(e, r.Results, func(e *ua.Encoder, s ua.StatusCode) { e.WriteStatusCode(s) })
	return writeDiagnosticInfoArray(e, r.DiagnosticInfos)
}

func DecodeDeleteMonitoredItemsResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r DeleteMonitoredItemsResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.Results, err = ua.ReadArray(d, func(d *ua.Decoder) (ua.StatusCode, error) { return d.ReadStatusCode() }); err != nil {
		return nil, err
	}
	if r.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return r, nil
}

// SubscriptionAcknowledgement tells the server a sequence number has
// been processed and its notification can be freed.
type SubscriptionAcknowledgement struct {
	SubscriptionID uint32
	SequenceNumber uint32
}

func (a SubscriptionAcknowledgement) Encode(e *ua.Encoder) {
	e.WriteUint32(a.SubscriptionID)
	e.WriteUint32(a.SequenceNumber)
}

func decodeSubscriptionAcknowledgement(d *ua.Decoder) (SubscriptionAcknowledgement, error) {
	var a SubscriptionAcknowledgement
	var err error
	if a.SubscriptionID, err = d.ReadUint32(); err != nil {
		return a, err
	}
	if a.SequenceNumber, err = d.ReadUint32(); err != nil {
		return a, err
	}
	return a, nil
}

// PublishRequest keeps one publish cycle outstanding per subscription;
// the publish loop (pkg/uasub) maintains a target outstanding count
// and reissues immediately on every response (spec §4.7).
type PublishRequest struct {
	Header                   RequestHeader
	SubscriptionAcknowledgements []SubscriptionAcknowledgement
}

func (r PublishRequest) EncodingTypeID() ua.NodeId { return PublishRequestTypeID }

func (r PublishRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	ua.WriteArray(e, r.SubscriptionAcknowledgements, func(e *ua.Encoder, a SubscriptionAcknowledgement) { a.Encode(e) })
	return nil
}

func DecodePublishRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r PublishRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.SubscriptionAcknowledgements, err = ua.ReadArray(d, decodeSubscriptionAcknowledgement); err != nil {
		return nil, err
	}
	return r, nil
}

// MonitoredItemNotification carries one sample; DataChangeNotification
// and EventNotificationList both arrive inside NotificationMessage's
// NotificationData as raw ExtensionObjects, since unwrapping them
// requires the ClientHandle routing table that lives in pkg/uasub.
type MonitoredItemNotification struct {
	ClientHandle uint32
	Value        ua.DataValue
}

func (n MonitoredItemNotification) Encode(e *ua.Encoder) error {
	e.WriteUint32(n.ClientHandle)
	return e.WriteDataValue(n.Value)
}

func decodeMonitoredItemNotification(d *ua.Decoder) (MonitoredItemNotification, error) {
	var n MonitoredItemNotification
	var err error
	if n.ClientHandle, err = d.ReadUint32(); err != nil {
		return n, err
	}
	if n.Value, err = d.ReadDataValue(); err != nil {
		return n, err
	}
	return n, nil
}

// NotificationMessage is one publish cycle's payload: a monotonically
// increasing SequenceNumber per subscription and zero or more
// notification ExtensionObjects (DataChangeNotification,
// EventNotificationList, StatusChangeNotification).
type NotificationMessage struct {
	SequenceNumber   uint32
	PublishTime      ua.DateTime
	NotificationData []ua.ExtensionObject
}

func (n NotificationMessage) Encode(e *ua.Encoder) error {
	e.WriteUint32(n.SequenceNumber)
	e.WriteDateTime(n.PublishTime)
	if n.NotificationData == nil {
		e.WriteArrayLength(-1)
		return nil
	}
	e.WriteArrayLength(len(n.NotificationData))
	for _, nd := range n.NotificationData {
		if err := e.WriteExtensionObject(nd); err != nil {
			return err
		}
	}
	return nil
}

func decodeNotificationMessage(d *ua.Decoder) (NotificationMessage, error) {
	var n NotificationMessage
	var err error
	if n.SequenceNumber, err = d.ReadUint32(); err != nil {
		return n, err
	}
	if n.PublishTime, err = d.ReadDateTime(); err != nil {
		return n, err
	}
	if n.NotificationData, err = ua.ReadArray(d, func(d *ua.Decoder) (ua.ExtensionObject, error) { return d.ReadExtensionObject() }); err != nil {
		return n, err
	}
	return n, nil
}

type PublishResponse struct {
	Header                   ResponseHeader
	SubscriptionID           uint32
	AvailableSequenceNumbers []uint32
	MoreNotifications        bool
	NotificationMessage      NotificationMessage
	Results                  []ua.StatusCode
	DiagnosticInfos          []ua.DiagnosticInfo
}

func (r PublishResponse) EncodingTypeID() ua.NodeId { return PublishResponseTypeID }

func (r PublishResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	e.WriteUint32(r.SubscriptionID)
	ua.WriteArray(e, r.AvailableSequenceNumbers, func(e *ua.Encoder, n uint32) { e.WriteUint32(n) })
	e.WriteBoolean(r.MoreNotifications)
	if err := r.NotificationMessage.Encode(e); err != nil {
		return err
	}
	ua.WriteArray(e, r.Results, func(e *ua.Encoder, s ua.StatusCode) { e.WriteStatusCode(s) })
	return writeDiagnosticInfoArray(e, r.DiagnosticInfos)
}

func DecodePublishResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r PublishResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.SubscriptionID, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.AvailableSequenceNumbers, err = ua.ReadArray(d, func(d *ua.Decoder) (uint32, error) { return d.ReadUint32() }); err != nil {
		return nil, err
	}
	if r.MoreNotifications, err = d.ReadBoolean(); err != nil {
		return nil, err
	}
	if r.NotificationMessage, err = decodeNotificationMessage(d); err != nil {
		return nil, err
	}
	if r.Results, err = ua.ReadArray(d, func(d *ua.Decoder) (ua.StatusCode, error) { return d.ReadStatusCode() }); err != nil {
		return nil, err
	}
	if r.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return r, nil
}

// RepublishRequest asks the server to resend one notification the
// client acknowledged was lost (e.g. after a reconnect).
type RepublishRequest struct {
	Header         RequestHeader
	SubscriptionID uint32
	RetransmitSequenceNumber uint32
}

func (r RepublishRequest) EncodingTypeID() ua.NodeId { return RepublishRequestTypeID }

func (r RepublishRequest) Encode(e *ua.Encoder) error {
	r.Header.Encode(e)
	e.WriteUint32(r.SubscriptionID)
	e.WriteUint32(r.RetransmitSequenceNumber)
	return nil
}

func DecodeRepublishRequest(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r RepublishRequest
	var err error
	if r.Header, err = DecodeRequestHeader(d); err != nil {
		return nil, err
	}
	if r.SubscriptionID, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	if r.RetransmitSequenceNumber, err = d.ReadUint32(); err != nil {
		return nil, err
	}
	return r, nil
}

type RepublishResponse struct {
	Header              ResponseHeader
	NotificationMessage NotificationMessage
}

func (r RepublishResponse) EncodingTypeID() ua.NodeId { return RepublishResponseTypeID }

func (r RepublishResponse) Encode(e *ua.Encoder) error {
	if err := r.Header.Encode(e); err != nil {
		return err
	}
	return r.NotificationMessage.Encode(e)
}

func DecodeRepublishResponse(d *ua.Decoder) (ua.BinaryCodec, error) {
	var r RepublishResponse
	var err error
	if r.Header, err = DecodeResponseHeader(d); err != nil {
		return nil, err
	}
	if r.NotificationMessage, err = decodeNotificationMessage(d); err != nil {
		return nil, err
	}
	return r, nil
}

func init() {
	ua.DefaultRegistry.Register(CreateSubscriptionRequestTypeID, DecodeCreateSubscriptionRequest)
	ua.DefaultRegistry.Register(CreateSubscriptionResponseTypeID, DecodeCreateSubscriptionResponse)
	ua.DefaultRegistry.Register(ModifySubscriptionRequestTypeID, DecodeModifySubscriptionRequest)
	ua.DefaultRegistry.Register(ModifySubscriptionResponseTypeID, DecodeModifySubscriptionResponse)
	ua.DefaultRegistry.Register(SetPublishingModeRequestTypeID, DecodeSetPublishingModeRequest)
	ua.DefaultRegistry.Register(SetPublishingModeResponseTypeID, DecodeSetPublishingModeResponse)
	ua.DefaultRegistry.Register(DeleteSubscriptionsRequestTypeID, DecodeDeleteSubscriptionsRequest)
	ua.DefaultRegistry.Register(DeleteSubscriptionsResponseTypeID, DecodeDeleteSubscriptionsResponse)
	ua.DefaultRegistry.Register(CreateMonitoredItemsRequestTypeID, DecodeCreateMonitoredItemsRequest)
	ua.DefaultRegistry.Register(CreateMonitoredItemsResponseTypeID, DecodeCreateMonitoredItemsResponse)
	ua.DefaultRegistry.Register(DeleteMonitoredItemsRequestTypeID, DecodeDeleteMonitoredItemsRequest)
	ua.DefaultRegistry.Register(DeleteMonitoredItemsResponseTypeID, DecodeDeleteMonitoredItemsResponse)
	ua.DefaultRegistry.Register(PublishRequestTypeID, DecodePublishRequest)
	ua.DefaultRegistry.Register(PublishResponseTypeID, DecodePublishResponse)
	ua.DefaultRegistry.Register(RepublishRequestTypeID, DecodeRepublishRequest)
	ua.DefaultRegistry.Register(RepublishResponseTypeID, DecodeRepublishResponse)
}
