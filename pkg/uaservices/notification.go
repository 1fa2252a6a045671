package uaservices

import "github.com/foundry-iiot/opcua/pkg/ua"

var (
	DataChangeNotificationTypeID  = ua.NewNumericNodeId(0, 811)
	EventNotificationListTypeID   = ua.NewNumericNodeId(0, 917)
	StatusChangeNotificationTypeID = ua.NewNumericNodeId(0, 820)
)

// DataChangeNotification carries one or more monitored-item samples,
// one of the ExtensionObject kinds NotificationMessage.NotificationData
// can hold (spec §4.7).
type DataChangeNotification struct {
	MonitoredItems []MonitoredItemNotification
	DiagnosticInfos []ua.DiagnosticInfo
}

func (n DataChangeNotification) EncodingTypeID() ua.NodeId { return DataChangeNotificationTypeID }

func (n DataChangeNotification) Encode(e *ua.Encoder) error {
	if n.MonitoredItems == nil {
		e.WriteArrayLength(-1)
	} else {
		e.WriteArrayLength(len(n.MonitoredItems))
		for _, it := range n.MonitoredItems {
			if err := it.Encode(e); err != nil {
				return err
			}
		}
	}
	return writeDiagnosticInfoArray(e, n.DiagnosticInfos)
}

func DecodeDataChangeNotification(d *ua.Decoder) (ua.BinaryCodec, error) {
	var n DataChangeNotification
	var err error
	if n.MonitoredItems, err = ua.ReadArray(d, decodeMonitoredItemNotification); err != nil {
		return nil, err
	}
	if n.DiagnosticInfos, err = readDiagnosticInfoArray(d); err != nil {
		return nil, err
	}
	return n, nil
}

// EventFieldList carries one event occurrence's selected field values,
// routed to its monitored item by ClientHandle.
type EventFieldList struct {
	ClientHandle uint32
	EventFields  []ua.Variant
}

func (f EventFieldList) Encode(e *ua.Encoder) error {
	e.WriteUint32(f.ClientHandle)
	return writeVariantArray(e, f.EventFields)
}

func decodeEventFieldList(d *ua.Decoder) (EventFieldList, error) {
	var f EventFieldList
	var err error
	if f.ClientHandle, err = d.ReadUint32(); err != nil {
		return f, err
	}
	if f.EventFields, err = readVariantArray(d); err != nil {
		return f, err
	}
	return f, nil
}

// EventNotificationList carries one or more event occurrences.
type EventNotificationList struct {
	Events []EventFieldList
}

func (n EventNotificationList) EncodingTypeID() ua.NodeId { return EventNotificationListTypeID }

func (n EventNotificationList) Encode(e *ua.Encoder) error {
	if n.Events == nil {
		e.WriteArrayLength(-1)
		return nil
	}
	e.WriteArrayLength(len(n.Events))
	for _, ev := range n.Events {
		if err := ev.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

func DecodeEventNotificationList(d *ua.Decoder) (ua.BinaryCodec, error) {
	var n EventNotificationList
	var err error
	if n.Events, err = ua.ReadArray(d, decodeEventFieldList); err != nil {
		return nil, err
	}
	return n, nil
}

// StatusChangeNotification tells the client the subscription itself
// transitioned state (e.g. a queue overflow or the server closing it).
type StatusChangeNotification struct {
	Status         ua.StatusCode
	DiagnosticInfo ua.DiagnosticInfo
}

func (n StatusChangeNotification) EncodingTypeID() ua.NodeId { return StatusChangeNotificationTypeID }

func (n StatusChangeNotification) Encode(e *ua.Encoder) error {
	e.WriteStatusCode(n.Status)
	return e.WriteDiagnosticInfo(n.DiagnosticInfo)
}

func DecodeStatusChangeNotification(d *ua.Decoder) (ua.BinaryCodec, error) {
	var n StatusChangeNotification
	var err error
	if n.Status, err = d.ReadStatusCode(); err != nil {
		return nil, err
	}
	if n.DiagnosticInfo, err = d.ReadDiagnosticInfo(); err != nil {
		return nil, err
	}
	return n, nil
}

func init() {
	ua.DefaultRegistry.Register(DataChangeNotificationTypeID, DecodeDataChangeNotification)
	ua.DefaultRegistry.Register(EventNotificationListTypeID, DecodeEventNotificationList)
	ua.DefaultRegistry.Register(StatusChangeNotificationTypeID, DecodeStatusChangeNotification)
}
