package gateprobe

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/keelan/gated/pkg/logger"
)

// Token wire formats the probe holds the server to.
var (
	sessionPattern = regexp.MustCompile(`^sess_[0-9a-f]{8}$`)
	proofPattern   = regexp.MustCompile(`^proof_[0-9a-f]{12}$`)
	keyPattern     = regexp.MustCompile(`^KEY-[0-9A-F]{6}$`)
)

// Stats accumulates probe results.
type Stats struct {
	StartTime time.Time
	Steps     int
	Failures  int
}

// step records one contract check.
func (s *Stats) step(ctx context.Context, name string, err error) error {
	s.Steps++
	if err != nil {
		s.Failures++
		logger.Get().Error(ctx, "probe step failed", logger.String("step", name), logger.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	logger.Get().Info(ctx, "probe step passed", logger.String("step", name))
	return nil
}

// Run walks the complete gate flow and verifies every response shape.
// The first failing step aborts the run.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg.BaseURL, cfg.Timeout)

	logger.Get().Info(ctx, "starting gate probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Bool("verbose", cfg.Verbose))

	if err := stats.step(ctx, "health", checkHealth(ctx, c)); err != nil {
		return err
	}
	if err := stats.step(ctx, "config", checkConfig(ctx, c)); err != nil {
		return err
	}

	sessionID, err := checkSessionStart(ctx, c)
	if err2 := stats.step(ctx, "session/start", err); err2 != nil {
		return err2
	}
	if err := stats.step(ctx, "session/status", checkSessionStatus(ctx, c, sessionID)); err != nil {
		return err
	}
	if err := stats.step(ctx, "session/refresh", checkSessionRefresh(ctx, c)); err != nil {
		return err
	}

	proofToken, err := checkCheckpointNext(ctx, c)
	if err2 := stats.step(ctx, "checkpoint/next", err); err2 != nil {
		return err2
	}
	if err := stats.step(ctx, "checkpoint/complete", checkCheckpointComplete(ctx, c)); err != nil {
		return err
	}
	if err := stats.step(ctx, "checkpoint/verify", checkCheckpointVerify(ctx, c, proofToken)); err != nil {
		return err
	}

	key, err := checkKeyIssue(ctx, c)
	if err2 := stats.step(ctx, "key", err); err2 != nil {
		return err2
	}
	if err := stats.step(ctx, "key/validate", checkKeyValidate(ctx, c, key)); err != nil {
		return err
	}
	if err := stats.step(ctx, "key/revoke", checkKeyRevoke(ctx, c, key)); err != nil {
		return err
	}
	if err := stats.step(ctx, "not-found", checkNotFound(ctx, c)); err != nil {
		return err
	}

	logger.Get().Info(ctx, "gate probe finished",
		logger.Int("steps", stats.Steps),
		logger.Int("failures", stats.Failures),
		logger.String("elapsed", time.Since(stats.StartTime).String()))
	return nil
}

func expectOK(status int, body map[string]any) error {
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", status)
	}
	if body["ok"] != true {
		return fmt.Errorf("body missing ok:true: %v", body)
	}
	return nil
}

func stringAt(body map[string]any, field string) (string, error) {
	s, ok := body[field].(string)
	if !ok || s == "" {
		return "", fmt.Errorf("missing %s in %v", field, body)
	}
	return s, nil
}

func checkHealth(ctx context.Context, c *client) error {
	status, body, err := c.get(ctx, "/api/health")
	if err != nil {
		return err
	}
	if err := expectOK(status, body); err != nil {
		return err
	}
	if body["status"] != "healthy" {
		return fmt.Errorf("unexpected health status: %v", body["status"])
	}
	return nil
}

func checkConfig(ctx context.Context, c *client) error {
	status, body, err := c.get(ctx, "/api/config")
	if err != nil {
		return err
	}
	if err := expectOK(status, body); err != nil {
		return err
	}
	if _, ok := body["providers"].([]any); !ok {
		return fmt.Errorf("missing providers in %v", body)
	}
	return nil
}

func checkSessionStart(ctx context.Context, c *client) (string, error) {
	status, body, err := c.post(ctx, "/api/session/start", nil)
	if err != nil {
		return "", err
	}
	if err := expectOK(status, body); err != nil {
		return "", err
	}
	id, err := stringAt(body, "sessionId")
	if err != nil {
		return "", err
	}
	if !sessionPattern.MatchString(id) {
		return "", fmt.Errorf("malformed sessionId %q", id)
	}
	return id, nil
}

func checkSessionStatus(ctx context.Context, c *client, sessionID string) error {
	status, body, err := c.get(ctx, "/api/session/status?sessionId="+sessionID)
	if err != nil {
		return err
	}
	if err := expectOK(status, body); err != nil {
		return err
	}
	if body["sessionId"] != sessionID {
		return fmt.Errorf("sessionId not echoed: %v", body["sessionId"])
	}

	// Missing parameter must be rejected.
	status, body, err = c.get(ctx, "/api/session/status")
	if err != nil {
		return err
	}
	if status != http.StatusBadRequest || body["error"] != "sessionId is required" {
		return fmt.Errorf("missing sessionId not rejected: %d %v", status, body)
	}
	return nil
}

func checkSessionRefresh(ctx context.Context, c *client) error {
	status, body, err := c.post(ctx, "/api/session/refresh", nil)
	if err != nil {
		return err
	}
	if err := expectOK(status, body); err != nil {
		return err
	}
	id, err := stringAt(body, "sessionId")
	if err != nil {
		return err
	}
	if !sessionPattern.MatchString(id) {
		return fmt.Errorf("malformed sessionId %q", id)
	}
	return nil
}

func checkCheckpointNext(ctx context.Context, c *client) (string, error) {
	status, body, err := c.get(ctx, "/api/checkpoint/next")
	if err != nil {
		return "", err
	}
	if err := expectOK(status, body); err != nil {
		return "", err
	}
	proof, err := stringAt(body, "proofToken")
	if err != nil {
		return "", err
	}
	if !proofPattern.MatchString(proof) {
		return "", fmt.Errorf("malformed proofToken %q", proof)
	}
	return proof, nil
}

func checkCheckpointComplete(ctx context.Context, c *client) error {
	status, body, err := c.post(ctx, "/api/checkpoint/complete", map[string]any{"answer": 42})
	if err != nil {
		return err
	}
	if err := expectOK(status, body); err != nil {
		return err
	}
	received, ok := body["received"].(map[string]any)
	if !ok || received["answer"] != float64(42) {
		return fmt.Errorf("body not echoed: %v", body["received"])
	}
	if body["nextUrl"] != "/checkpoint/2" {
		return fmt.Errorf("unexpected nextUrl: %v", body["nextUrl"])
	}
	return nil
}

func checkCheckpointVerify(ctx context.Context, c *client, proofToken string) error {
	status, body, err := c.post(ctx, "/api/checkpoint/verify", map[string]any{"proofToken": proofToken})
	if err != nil {
		return err
	}
	if err := expectOK(status, body); err != nil {
		return err
	}
	if body["verified"] != true || body["proofToken"] != proofToken {
		return fmt.Errorf("verification echo mismatch: %v", body)
	}
	return nil
}

func checkKeyIssue(ctx context.Context, c *client) (string, error) {
	status, body, err := c.get(ctx, "/api/key")
	if err != nil {
		return "", err
	}
	if err := expectOK(status, body); err != nil {
		return "", err
	}
	key, err := stringAt(body, "key")
	if err != nil {
		return "", err
	}
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("malformed key %q", key)
	}
	return key, nil
}

func checkKeyValidate(ctx context.Context, c *client, key string) error {
	status, body, err := c.post(ctx, "/api/key/validate", map[string]any{"key": key})
	if err != nil {
		return err
	}
	if err := expectOK(status, body); err != nil {
		return err
	}
	if body["valid"] != true || body["key"] != key {
		return fmt.Errorf("validation echo mismatch: %v", body)
	}
	return nil
}

func checkKeyRevoke(ctx context.Context, c *client, key string) error {
	status, body, err := c.post(ctx, "/api/key/revoke", map[string]any{"key": key})
	if err != nil {
		return err
	}
	if err := expectOK(status, body); err != nil {
		return err
	}
	if body["revoked"] != true {
		return fmt.Errorf("revocation not acknowledged: %v", body)
	}
	return nil
}

func checkNotFound(ctx context.Context, c *client) error {
	status, body, err := c.get(ctx, "/api/definitely/not/a/route")
	if err != nil {
		return err
	}
	if status != http.StatusNotFound || body["error"] != "Not found" {
		return fmt.Errorf("unknown route not rejected: %d %v", status, body)
	}
	return nil
}
