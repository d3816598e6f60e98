// Package token генерирует уникальные идентификаторы сделок и платёжные метки.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	dealTokenBytes    = 6
	paymentSuffixSize = 4
)

// New возвращает криптографически случайную hex-строку длиной 2*byteLen символов.
func New(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewDealToken возвращает публичный токен сделки для ссылок и команд.
func NewDealToken() (string, error) {
	return New(dealTokenBytes)
}

// NewPaymentToken возвращает платёжную метку для внешнего перевода.
// Токен сделки входит в метку как префикс, чтобы оператор мог сверить платёж глазами.
func NewPaymentToken(dealToken string) (string, error) {
	suffix, err := New(paymentSuffixSize)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("DEAL-%s-%s", dealToken, suffix), nil
}
