package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"testing"

	"github.com/aretw0/formwizard/pkg/adapters/memory"
	"github.com/aretw0/formwizard/pkg/domain"
	"github.com/aretw0/formwizard/pkg/persistence/middleware"
	"github.com/aretw0/formwizard/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func encrypted(t *testing.T, next ports.StateStore, cfg middleware.EncryptionConfig) ports.StateStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		t.Fatalf("NewEncryptionMiddleware() error = %v", err)
	}
	return mw(next)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	secureStore := encrypted(t, underlyingStore, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	ctx := context.Background()
	sessionID := "test-session"
	originalState := domain.NewState(sessionID, "1")
	originalState.PrevSteps = []string{"1"}
	originalState.ActiveStep = "2"
	originalState.Values["card"] = map[string]any{"number": "4111"}

	if err := secureStore.Save(ctx, sessionID, originalState); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	storedState, err := underlyingStore.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Underlying load failed: %v", err)
	}
	if _, ok := storedState.Values["card"]; ok {
		t.Fatal("Expected card to be hidden")
	}
	if storedState.ActiveStep != "" || len(storedState.PrevSteps) != 0 {
		t.Errorf("Expected navigation to be hidden, got step %q and %v", storedState.ActiveStep, storedState.PrevSteps)
	}
	if storedState.Status != domain.StatusActive {
		t.Errorf("Expected status to stay readable, got %q", storedState.Status)
	}

	loadedState, err := secureStore.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Load via middleware failed: %v", err)
	}
	if loadedState.ActiveStep != "2" {
		t.Errorf("ActiveStep = %q, want 2", loadedState.ActiveStep)
	}
	card, _ := loadedState.Values["card"].(map[string]any)
	if card["number"] != "4111" {
		t.Errorf("Expected card number 4111, got %v", loadedState.Values["card"])
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	secureStoreOld := encrypted(t, underlyingStore, middleware.EncryptionConfig{ActiveKey: oldKey})

	ctx := context.Background()
	sessionID := "rotation-session"
	originalState := domain.NewState(sessionID, "1")
	originalState.Values["data"] = "encrypted-with-old-key"

	if err := secureStoreOld.Save(ctx, sessionID, originalState); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	secureStoreNew := encrypted(t, underlyingStore, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loadedState, err := secureStoreNew.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("Load with rotated key failed: %v", err)
	}
	if loadedState.Values["data"] != "encrypted-with-old-key" {
		t.Errorf("Decryption with fallback key failed")
	}

	loadedState.Values["data"] = "encrypted-with-new-key"
	if err := secureStoreNew.Save(ctx, sessionID, loadedState); err != nil {
		t.Fatalf("Save with new key failed: %v", err)
	}

	if _, err := secureStoreOld.Load(ctx, sessionID); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_RejectsPlainState(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()
	if err := underlyingStore.Save(ctx, "plain", domain.NewState("plain", "1")); err != nil {
		t.Fatal(err)
	}

	secureStore := encrypted(t, underlyingStore, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if _, err := secureStore.Load(ctx, "plain"); !errors.Is(err, middleware.ErrNotEncrypted) {
		t.Errorf("Load() error = %v, want ErrNotEncrypted", err)
	}
	if _, err := secureStore.Load(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Load() error = %v, want ErrSessionNotFound", err)
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	if _, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")}); err == nil {
		t.Error("Expected an error for invalid key size")
	}
	if _, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("old")},
	}); err == nil {
		t.Error("Expected an error for invalid fallback key size")
	}
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	got, err := middleware.ParseKey(hex.EncodeToString(key))
	if err != nil || string(got) != string(key) {
		t.Errorf("ParseKey(hex) = %x, %v", got, err)
	}
	if _, err := middleware.ParseKey("not-a-key"); err == nil {
		t.Error("ParseKey() should reject short keys")
	}
}
