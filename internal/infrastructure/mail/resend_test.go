package mail

import (
	"errors"
	"testing"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

func TestRequest(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		msg     domain.Email
		wantErr error
	}{
		{"ok", "shop@example.com", domain.Email{To: []string{"a@example.com"}, Subject: "s", Text: "t"}, nil},
		{"no recipient", "shop@example.com", domain.Email{Text: "t"}, domain.ErrInvalidInput},
		{"no body", "shop@example.com", domain.Email{To: []string{"a@example.com"}}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := request(tt.from, tt.msg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.From != tt.from || len(req.To) != 1 || req.Text != "t" {
				t.Fatalf("unexpected request %+v", req)
			}
		})
	}
}

func TestRequest_MissingSender(t *testing.T) {
	if _, err := request("", domain.Email{To: []string{"a@example.com"}, Text: "t"}); err == nil {
		t.Fatalf("expected error without sender")
	}
}
