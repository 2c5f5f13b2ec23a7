package wallet

import (
	"context"
	"crypto/md5" //nolint:gosec // pass id derivation, not security
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/raseed-cloud/raseed/internal/domain"
	"github.com/raseed-cloud/raseed/internal/domain/pass"
	"github.com/raseed-cloud/raseed/internal/domain/receipt"
)

const (
	saveURLBase     = "https://pay.google.com/gp/v/save/"
	passValidity    = 365 * 24 * time.Hour
	backgroundColor = "#4CAF50"
	logoURI         = "https://storage.googleapis.com/wallet-lab-tools-codelab-artifacts-public/pass_google_logo.jpg"
)

// Service creates and lists wallet passes.
type Service struct {
	passes      Repository
	issuerID    string
	classSuffix string
	now         func() time.Time
}

// New creates a wallet service.
func New(passes Repository, issuerID, classSuffix string) *Service {
	if issuerID == "" {
		issuerID = "demo-issuer"
	}
	if classSuffix == "" {
		classSuffix = "receipt_pass_class"
	}
	return &Service{
		passes:      passes,
		issuerID:    issuerID,
		classSuffix: classSuffix,
		now:         time.Now,
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// CreatePass assembles, encodes and persists a save pass for one receipt.
// The pass id is the owner hash joined with the receipt id, so one receipt
// maps to exactly one pass per owner.
func (s *Service) CreatePass(ctx context.Context, rec *receipt.Receipt) (pass.Pass, error) {
	userHash := ownerHash(rec.UserID())
	passID := userHash + "_" + rec.ID()

	payload, err := json.Marshal(s.buildClaims(rec, passID, userHash))
	if err != nil {
		return pass.Pass{}, fmt.Errorf("marshal pass payload: %w", err)
	}

	p := pass.Pass{
		ID:        passID,
		UserID:    rec.UserID(),
		ReceiptID: rec.ID(),
		SaveURL:   saveURLBase + base64.URLEncoding.EncodeToString(payload),
		Payload:   payload,
		CreatedAt: s.now(),
	}
	if err := s.passes.Save(ctx, &p); err != nil {
		return pass.Pass{}, fmt.Errorf("save pass: %w", err)
	}
	return p, nil
}

// ListForUser returns the identity's passes, newest first.
func (s *Service) ListForUser(ctx context.Context, identity string) ([]pass.Pass, error) {
	if err := domain.ValidateIdentity(identity); err != nil {
		return nil, err
	}
	passes, err := s.passes.ListByUser(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("list passes: %w", err)
	}
	return passes, nil
}

func (s *Service) buildClaims(rec *receipt.Receipt, passID, userHash string) saveClaims {
	now := s.now()
	amount := fmt.Sprintf("$%.2f", rec.Total())

	date := rec.Date()
	if date == "" {
		date = now.Format(receipt.DateLayout)
	}

	obj := genericObject{
		ID:      s.issuerID + "." + passID,
		ClassID: s.issuerID + "." + s.classSuffix,
		State:   "ACTIVE",
		HeaderObject: headerObject{
			Header:    headerOr(rec.Vendor(), "Receipt"),
			SubHeader: amount,
		},
		TextObjects: []textObject{
			{Header: "Date", Body: date},
			{Header: "Category", Body: rec.Category()},
			{Header: "Amount", Body: amount},
			{Header: "Receipt ID", Body: truncate(rec.ID(), 8)},
			{Header: "User", Body: truncate(rec.UserID(), 20)},
		},
		HexBackgroundColor: backgroundColor,
		Logo:               &logo{SourceURI: sourceURI{URI: logoURI}},
		GroupingInfo: groupingInfo{
			GroupingID: "user-receipts-" + userHash,
			SortIndex:  now.Unix(),
		},
		Barcode: &barcode{
			Type:          "QR_CODE",
			Value:         fmt.Sprintf("receipt:%s:user:%s", rec.ID(), userHash),
			AlternateText: "Receipt " + truncate(rec.ID(), 8),
		},
		ValidTimeInterval: &timeInterval{
			Start: intervalDate{Date: now.Format("2006-01-02T15:04:05")},
			End:   intervalDate{Date: now.Add(passValidity).Format("2006-01-02T15:04:05")},
		},
	}

	return saveClaims{
		Issuer:   s.issuerID,
		Audience: "google",
		Type:     "savetowallet",
		IssuedAt: now.Unix(),
		Payload:  savePayload{GenericObjects: []genericObject{obj}},
	}
}

func ownerHash(identity string) string {
	sum := md5.Sum([]byte(identity)) //nolint:gosec
	return hex.EncodeToString(sum[:])[:8]
}

func headerOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
