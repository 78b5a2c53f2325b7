package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSignatureVerifier implements ports.SignatureVerifier using HMAC-SHA256.
// It serves two surfaces with two distinct secrets: client verification
// callbacks (key secret over "gatewayOrderID|gatewayPaymentID") and webhook
// bodies (webhook secret over the exact raw bytes).
type HMACSignatureVerifier struct{}

// NewHMACSignatureVerifier creates a new HMAC-SHA256 signature verifier.
func NewHMACSignatureVerifier() *HMACSignatureVerifier {
	return &HMACSignatureVerifier{}
}

// Sign computes HMAC-SHA256 of payload using secret.
// Returns lowercase hex-encoded signature.
func (v *HMACSignatureVerifier) Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks if signature matches HMAC-SHA256(secret, payload).
// Uses constant-time comparison to prevent timing attacks.
func (v *HMACSignatureVerifier) Verify(secret string, payload []byte, signature string) bool {
	expected := v.Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// CallbackPayload builds the signed material for a client verification
// callback: gateway order id and gateway payment id joined with a pipe.
func CallbackPayload(gatewayOrderID, gatewayPaymentID string) []byte {
	return []byte(gatewayOrderID + "|" + gatewayPaymentID)
}
