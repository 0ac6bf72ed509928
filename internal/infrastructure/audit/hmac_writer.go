package audit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"github.com/turtacn/esg/internal/domain/models"
)

// SignAuditEvent calculates the HMAC-SHA256 signature of an audit event's JSON form.
func SignAuditEvent(event models.AuditEvent, secretKey string) (string, error) {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return signPayload(eventBytes, secretKey), nil
}

// VerifyAuditPayload checks a signature produced over payload.
func VerifyAuditPayload(payload []byte, signature, secretKey string) bool {
	expected := signPayload(payload, secretKey)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func signPayload(payload []byte, secretKey string) string {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write(payload)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
