package client

import (
	"encoding/json"
	"testing"
)

func TestStaffCardPayload(t *testing.T) {
	card := StaffCard{ID: "u1", Name: "Ravi", Store: "City Medical", Role: "staff", ContactNo: "9876543210"}
	payload, err := card.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}

	var decoded StaffCard
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded != card {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
}

func TestStaffCardPayloadRequiresIdentity(t *testing.T) {
	if _, err := (StaffCard{Name: "Ravi"}).Payload(); err == nil {
		t.Error("payload without id should fail")
	}
	if _, err := (StaffCard{ID: "u1"}).Payload(); err == nil {
		t.Error("payload without name should fail")
	}
}

func TestStaffCardQRPNG(t *testing.T) {
	card := StaffCard{ID: "u1", Name: "Ravi", Store: "City Medical", Role: "staff"}
	png, err := card.QRPNG(128)
	if err != nil {
		t.Fatalf("QRPNG: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("empty PNG")
	}
	// PNG signature.
	if png[0] != 0x89 || string(png[1:4]) != "PNG" {
		t.Errorf("output is not a PNG: % x", png[:4])
	}
}

func TestStaffCardQRPNGDefaultSize(t *testing.T) {
	card := StaffCard{ID: "u1", Name: "Ravi"}
	if _, err := card.QRPNG(0); err != nil {
		t.Errorf("zero size should fall back to a default: %v", err)
	}
}
