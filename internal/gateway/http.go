package gateway

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"bookingform/internal/form"
	"bookingform/internal/pkg/jwt"
)

// StatusError reports a non-2xx answer from the receiver.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("submission rejected: status=%d body=%q", e.Code, e.Body)
}

// HTTP posts payloads as JSON to a booking receiver.
type HTTP struct {
	url    string
	client *http.Client
	signer *jwt.Signer
}

func NewHTTP(url string, signer *jwt.Signer, timeout time.Duration) *HTTP {
	return &HTTP{
		url:    url,
		client: &http.Client{Timeout: timeout},
		signer: signer,
	}
}

// Fingerprint is the idempotency key of a request body.
func Fingerprint(body []byte) string {
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func (g *HTTP) Send(ctx context.Context, p form.Payload) error {
	body, err := Encode(p)
	if err != nil {
		return err
	}
	fp := Fingerprint(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", fp)

	if g.signer != nil {
		subject := ""
		if ref, ok := FormFrom(ctx); ok {
			subject = ref.ID
		}
		token, err := g.signer.Sign(subject, fp)
		if err != nil {
			return fmt.Errorf("sign request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	res, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("post submission: %w", err)
	}
	defer res.Body.Close()

	log.WithFields(log.Fields{
		"status":  res.StatusCode,
		"latency": time.Since(start),
		"key":     fp[:12],
	}).Debug("submission posted")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &StatusError{Code: res.StatusCode, Body: string(snippet)}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
