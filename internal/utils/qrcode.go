package utils

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// GeneratePatientCardQR renders the PNG QR code embedded in a patient card.
// The payload is the stable patient identifier; scanners resolve it against
// the API.
func GeneratePatientCardQR(patientID string) ([]byte, error) {
	payload := fmt.Sprintf("hospital:patient:%s", patientID)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode patient QR code: %w", err)
	}
	return png, nil
}
