package uaservices

import (
	"testing"

	"github.com/foundry-iiot/opcua/pkg/ua"
)

func TestEventNotificationListRoundTrip(t *testing.T) {
	n := EventNotificationList{
		Events: []EventFieldList{
			{ClientHandle: 1, EventFields: []ua.Variant{
				ua.NewScalarVariant(ua.VariantTypeString, "AlarmActive"),
				ua.NewScalarVariant(ua.VariantTypeInt32, int32(500)),
			}},
		},
	}
	obj, err := ua.EncodeTyped(n)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := ua.DecodeTyped(ua.DefaultRegistry, obj)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := decoded.(EventNotificationList)
	if !ok || len(got.Events) != 1 || len(got.Events[0].EventFields) != 2 {
		t.Fatalf("event notification round trip mismatch: %+v", decoded)
	}
	if got.Events[0].EventFields[0].Scalar.(string) != "AlarmActive" {
		t.Fatalf("event field lost: %+v", got.Events[0])
	}
}

func TestStatusChangeNotificationRoundTrip(t *testing.T) {
	n := StatusChangeNotification{Status: ua.StatusBadSessionClosed}
	obj, err := ua.EncodeTyped(n)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := ua.DecodeTyped(ua.DefaultRegistry, obj)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := decoded.(StatusChangeNotification)
	if !ok || got.Status != ua.StatusBadSessionClosed {
		t.Fatalf("status change notification round trip mismatch: %+v", decoded)
	}
}

func TestDataChangeNotificationEmptyArrayRoundTrip(t *testing.T) {
	n := DataChangeNotification{}
	obj, err := ua.EncodeTyped(n)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := ua.DecodeTyped(ua.DefaultRegistry, obj)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := decoded.(DataChangeNotification)
	if !ok || len(got.MonitoredItems) != 0 {
		t.Fatalf("empty data change notification round trip mismatch: %+v", decoded)
	}
}
