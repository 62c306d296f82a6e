package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// replayWindow допустимое расхождение между временем запроса и текущим временем
const replayWindow = 300

type SignatureVerifier struct {
	signingSecret   []byte
	allowedChannels map[string]struct{}
	log             *zap.Logger
}

func NewSignatureVerifier(signingSecret string, allowedChannelIDs []string, log *zap.Logger) *SignatureVerifier {
	allowed := make(map[string]struct{}, len(allowedChannelIDs))
	for _, id := range allowedChannelIDs {
		allowed[id] = struct{}{}
	}
	return &SignatureVerifier{
		signingSecret:   []byte(signingSecret),
		allowedChannels: allowed,
		log:             log,
	}
}

// Verify проверяет три независимых условия: окно повтора, HMAC-подпись
// и allow-list каналов. Наружу уходит только общий вердикт, без причины отказа.
func (v *SignatureVerifier) Verify(rawBody []byte, timestamp int64, signature, channelID string) bool {
	now := time.Now().Unix()
	if now-timestamp > replayWindow || timestamp-now > replayWindow {
		v.log.Debug("verification failed: timestamp outside replay window",
			zap.Int64("timestamp", timestamp),
		)
		return false
	}

	mac := hmac.New(sha256.New, v.signingSecret)
	fmt.Fprintf(mac, "v0:%d:", timestamp)
	mac.Write(rawBody)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	// Сравнение за константное время, иначе подпись можно подобрать по таймингам
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		v.log.Debug("verification failed: signature mismatch")
		return false
	}

	if _, ok := v.allowedChannels[channelID]; !ok {
		v.log.Debug("verification failed: channel not in allow-list",
			zap.String("channel_id", channelID),
		)
		return false
	}

	return true
}
