package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sisterblooms/storefront-backend/pkg/config"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret: "secret",
		Issuer: "sister-blooms",
		TTL:    24 * time.Hour,
	}
}

func TestMintAndParseGuestToken(t *testing.T) {
	cfg := testSessionConfig()
	now := time.Now().UTC()
	sid := uuid.New()

	token, minted, err := MintGuestToken(cfg, now, sid)
	if err != nil {
		t.Fatalf("mint guest token: %v", err)
	}
	if minted.SessionID != sid {
		t.Fatalf("minted claims lost session id")
	}

	claims, err := ParseGuestToken(cfg, token)
	if err != nil {
		t.Fatalf("parse guest token: %v", err)
	}
	if claims.SessionID != sid {
		t.Fatalf("expected sid %s, got %s", sid, claims.SessionID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti to be set")
	}
}

func TestMintGuestTokenGeneratesSessionID(t *testing.T) {
	_, claims, err := MintGuestToken(testSessionConfig(), time.Now(), uuid.Nil)
	if err != nil {
		t.Fatalf("mint guest token: %v", err)
	}
	if claims.SessionID == uuid.Nil {
		t.Fatalf("expected generated session id")
	}
}

func TestMintGuestTokenRejectsBadConfig(t *testing.T) {
	cases := map[string]config.SessionConfig{
		"secret": {Issuer: "x", TTL: time.Hour},
		"issuer": {Secret: "x", TTL: time.Hour},
		"ttl":    {Secret: "x", Issuer: "x"},
	}
	for name, cfg := range cases {
		if _, _, err := MintGuestToken(cfg, time.Now(), uuid.New()); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseGuestTokenRejectsTamperedAndExpired(t *testing.T) {
	cfg := testSessionConfig()
	token, _, err := MintGuestToken(cfg, time.Now(), uuid.New())
	if err != nil {
		t.Fatalf("mint guest token: %v", err)
	}

	other := cfg
	other.Secret = "other"
	if _, err := ParseGuestToken(other, token); err == nil {
		t.Fatalf("expected signature failure")
	}

	wrongIssuer := cfg
	wrongIssuer.Issuer = "someone-else"
	if _, err := ParseGuestToken(wrongIssuer, token); err == nil {
		t.Fatalf("expected issuer failure")
	}

	expired, _, err := MintGuestToken(cfg, time.Now().Add(-48*time.Hour), uuid.New())
	if err != nil {
		t.Fatalf("mint expired token: %v", err)
	}
	if _, err := ParseGuestToken(cfg, expired); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func TestShouldRenew(t *testing.T) {
	cfg := testSessionConfig()
	now := time.Now()
	_, claims, err := MintGuestToken(cfg, now, uuid.New())
	if err != nil {
		t.Fatalf("mint guest token: %v", err)
	}
	if ShouldRenew(claims, now.Add(time.Hour)) {
		t.Fatalf("fresh token should not renew")
	}
	if !ShouldRenew(claims, now.Add(13*time.Hour)) {
		t.Fatalf("token past half-life should renew")
	}
	if !ShouldRenew(nil, now) {
		t.Fatalf("nil claims should renew")
	}
}
