package client

import (
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// StaffCard is the identity card a store prints for a staff member. The QR
// code carries the card payload so a scan identifies the person.
type StaffCard struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Store     string `json:"store"`
	Role      string `json:"role"`
	ContactNo string `json:"contactNo,omitempty"`
}

// Payload is the JSON string encoded into the QR code
func (sc StaffCard) Payload() (string, error) {
	if sc.ID == "" || sc.Name == "" {
		return "", fmt.Errorf("staff card needs an id and a name")
	}
	raw, err := json.Marshal(sc)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// QRPNG renders the card as a PNG QR code of the given pixel size
func (sc StaffCard) QRPNG(size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	payload, err := sc.Payload()
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(payload, qrcode.Medium, size)
}
