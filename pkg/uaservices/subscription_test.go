package uaservices

import (
	"testing"

	"github.com/foundry-iiot/opcua/pkg/ua"
)

func TestCreateSubscriptionRoundTrip(t *testing.T) {
	req := CreateSubscriptionRequest{
		Header:                      NewRequestHeader(ua.NewNumericNodeId(1, 2), 1, 0),
		RequestedPublishingInterval: 1000,
		RequestedLifetimeCount:      600,
		RequestedMaxKeepAliveCount:  20,
		MaxNotificationsPerPublish:  0,
		PublishingEnabled:           true,
		Priority:                    1,
	}
	e := ua.NewEncoder()
	if err := req.Encode(e); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeCreateSubscriptionRequest(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(CreateSubscriptionRequest)
	if got.RequestedLifetimeCount != 600 || !got.PublishingEnabled {
		t.Fatalf("create subscription request round trip mismatch: %+v", got)
	}

	resp := CreateSubscriptionResponse{
		SubscriptionID:            7,
		RevisedPublishingInterval: 1000,
		RevisedLifetimeCount:      600,
		RevisedMaxKeepAliveCount:  20,
	}
	e2 := ua.NewEncoder()
	if err := resp.Encode(e2); err != nil {
		t.Fatal(err)
	}
	decodedResp, err := DecodeCreateSubscriptionResponse(ua.NewDecoder(e2.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if decodedResp.(CreateSubscriptionResponse).SubscriptionID != 7 {
		t.Fatalf("create subscription response round trip mismatch: %+v", decodedResp)
	}
}

func TestCreateMonitoredItemsRoundTrip(t *testing.T) {
	req := CreateMonitoredItemsRequest{
		Header:             NewRequestHeader(ua.NewNumericNodeId(1, 2), 1, 0),
		SubscriptionID:     7,
		TimestampsToReturn: TimestampsBoth,
		ItemsToCreate: []MonitoredItemCreateRequest{
			{
				ItemToMonitor:  ReadValueId{NodeID: ua.NewNumericNodeId(2, 1), AttributeID: 13},
				MonitoringMode: 2,
				RequestedParameters: MonitoringParameters{
					ClientHandle:     1,
					SamplingInterval: 250,
					QueueSize:        1,
					DiscardOldest:    true,
				},
			},
		},
	}
	e := ua.NewEncoder()
	if err := req.Encode(e); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeCreateMonitoredItemsRequest(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(CreateMonitoredItemsRequest)
	if len(got.ItemsToCreate) != 1 || got.ItemsToCreate[0].RequestedParameters.ClientHandle != 1 {
		t.Fatalf("create monitored items request round trip mismatch: %+v", got)
	}

	resp := CreateMonitoredItemsResponse{
		Results: []MonitoredItemCreateResult{
			{StatusCode: ua.StatusGood, MonitoredItemID: 42, RevisedSamplingInterval: 250},
		},
	}
	e2 := ua.NewEncoder()
	if err := resp.Encode(e2); err != nil {
		t.Fatal(err)
	}
	decodedResp, err := DecodeCreateMonitoredItemsResponse(ua.NewDecoder(e2.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	gotResp := decodedResp.(CreateMonitoredItemsResponse)
	if len(gotResp.Results) != 1 || gotResp.Results[0].MonitoredItemID != 42 {
		t.Fatalf("create monitored items response round trip mismatch: %+v", gotResp)
	}
}

func TestPublishRoundTrip(t *testing.T) {
	req := PublishRequest{
		Header: NewRequestHeader(ua.NewNumericNodeId(1, 2), 1, 0),
		SubscriptionAcknowledgements: []SubscriptionAcknowledgement{
			{SubscriptionID: 7, SequenceNumber: 3},
		},
	}
	e := ua.NewEncoder()
	if err := req.Encode(e); err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodePublishRequest(ua.NewDecoder(e.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	got := decoded.(PublishRequest)
	if len(got.SubscriptionAcknowledgements) != 1 || got.SubscriptionAcknowledgements[0].SequenceNumber != 3 {
		t.Fatalf("publish request round trip mismatch: %+v", got)
	}

	dcn := DataChangeNotification{
		MonitoredItems: []MonitoredItemNotification{
			{ClientHandle: 1, Value: ua.DataValue{Value: ua.NewScalarVariant(ua.VariantTypeDouble, 21.5), HasValue: true}},
		},
	}
	obj, err := ua.EncodeTyped(dcn)
	if err != nil {
		t.Fatal(err)
	}

	resp := PublishResponse{
		SubscriptionID: 7,
		NotificationMessage: NotificationMessage{
			SequenceNumber:   1,
			NotificationData: []ua.ExtensionObject{obj},
		},
	}
	e2 := ua.NewEncoder()
	if err := resp.Encode(e2); err != nil {
		t.Fatal(err)
	}
	decodedResp, err := DecodePublishResponse(ua.NewDecoder(e2.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	gotResp := decodedResp.(PublishResponse)
	if gotResp.SubscriptionID != 7 || len(gotResp.NotificationMessage.NotificationData) != 1 {
		t.Fatalf("publish response round trip mismatch: %+v", gotResp)
	}

	decodedNotification, err := ua.DecodeTyped(ua.DefaultRegistry, gotResp.NotificationMessage.NotificationData[0])
	if err != nil {
		t.Fatal(err)
	}
	gotDCN, ok := decodedNotification.(DataChangeNotification)
	if !ok || len(gotDCN.MonitoredItems) != 1 || gotDCN.MonitoredItems[0].Value.Value.Scalar.(float64) != 21.5 {
		t.Fatalf("data change notification lost through publish round trip: %+v", decodedNotification)
	}
}
