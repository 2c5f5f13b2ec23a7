package wallet

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/raseed-cloud/raseed/internal/domain"
	"github.com/raseed-cloud/raseed/internal/domain/pass"
	"github.com/raseed-cloud/raseed/internal/domain/receipt"
)

type mockRepo struct {
	saveFn func(ctx context.Context, p *pass.Pass) error
	listFn func(ctx context.Context, userID string) ([]pass.Pass, error)
}

func (m *mockRepo) Save(ctx context.Context, p *pass.Pass) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, p)
	}
	return nil
}

func (m *mockRepo) ListByUser(ctx context.Context, userID string) ([]pass.Pass, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

var testNow = time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC)

func testService(repo *mockRepo) *Service {
	return New(repo, "3388000000012345", "receipt_pass_class").
		WithClock(func() time.Time { return testNow })
}

func testReceipt(t *testing.T) receipt.Receipt {
	t.Helper()
	rec, err := receipt.New("rcpt-1", "user@example.com", "Zomato", "Food",
		nil, 250, "2025-08-10", testNow)
	if err != nil {
		t.Fatalf("building receipt: %v", err)
	}
	return rec
}

func TestCreatePass_IDAndURL(t *testing.T) {
	repo := &mockRepo{}
	var saved *pass.Pass
	repo.saveFn = func(_ context.Context, p *pass.Pass) error {
		saved = p
		return nil
	}

	rec := testReceipt(t)
	p, err := testService(repo).CreatePass(context.Background(), &rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// md5("user@example.com")[:8] is deterministic.
	if p.ID != ownerHash("user@example.com")+"_rcpt-1" {
		t.Errorf("unexpected pass id %q", p.ID)
	}
	if !strings.HasPrefix(p.SaveURL, "https://pay.google.com/gp/v/save/") {
		t.Errorf("unexpected save url %q", p.SaveURL)
	}
	if saved == nil || saved.ID != p.ID {
		t.Error("pass must be persisted")
	}

	// The URL suffix decodes back to the stored payload.
	encoded := strings.TrimPrefix(p.SaveURL, "https://pay.google.com/gp/v/save/")
	decoded, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("save url payload is not base64url: %v", err)
	}
	if string(decoded) != string(p.Payload) {
		t.Error("save url payload differs from stored payload")
	}
}

func TestCreatePass_PayloadShape(t *testing.T) {
	rec := testReceipt(t)
	p, err := testService(&mockRepo{}).CreatePass(context.Background(), &rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var claims map[string]any
	if err := json.Unmarshal(p.Payload, &claims); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if claims["iss"] != "3388000000012345" || claims["aud"] != "google" || claims["typ"] != "savetowallet" {
		t.Errorf("unexpected claims: %v", claims)
	}

	payload := claims["payload"].(map[string]any)
	objs := payload["genericObjects"].([]any)
	if len(objs) != 1 {
		t.Fatalf("expected 1 generic object, got %d", len(objs))
	}
	obj := objs[0].(map[string]any)
	if obj["classId"] != "3388000000012345.receipt_pass_class" || obj["state"] != "ACTIVE" {
		t.Errorf("unexpected object: classId=%v state=%v", obj["classId"], obj["state"])
	}
	header := obj["headerObject"].(map[string]any)
	if header["header"] != "Zomato" || header["subHeader"] != "$250.00" {
		t.Errorf("unexpected header: %v", header)
	}
}

func TestCreatePass_SaveFailure(t *testing.T) {
	repo := &mockRepo{saveFn: func(_ context.Context, _ *pass.Pass) error {
		return errors.New("store down")
	}}

	rec := testReceipt(t)
	if _, err := testService(repo).CreatePass(context.Background(), &rec); err == nil {
		t.Fatal("expected error when save fails")
	}
}

func TestListForUser_ValidatesIdentity(t *testing.T) {
	called := false
	repo := &mockRepo{listFn: func(_ context.Context, _ string) ([]pass.Pass, error) {
		called = true
		return nil, nil
	}}

	_, err := testService(repo).ListForUser(context.Background(), "bad-id")
	if !errors.Is(err, domain.ErrIdentityFormat) {
		t.Fatalf("expected ErrIdentityFormat, got %v", err)
	}
	if called {
		t.Error("repository must not be hit for an invalid identity")
	}
}

func TestListForUser_Delegates(t *testing.T) {
	repo := &mockRepo{listFn: func(_ context.Context, userID string) ([]pass.Pass, error) {
		if userID != "user@example.com" {
			t.Errorf("unexpected user id %q", userID)
		}
		return []pass.Pass{{ID: "p1"}}, nil
	}}

	passes, err := testService(repo).ListForUser(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(passes) != 1 || passes[0].ID != "p1" {
		t.Errorf("unexpected passes: %+v", passes)
	}
}
