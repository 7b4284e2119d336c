package service

import (
	"testing"

	"github.com/Helmus101/confluence/internal/entity"
)

func strPtr(s string) *string { return &s }

func TestContactCleaner_Clean(t *testing.T) {
	c := NewContactCleaner("us")

	got := c.Clean(entity.EnrichedData{
		Email:   strPtr("  Sarah.Chen@Example.COM "),
		Phone:   strPtr(" (415) 555-1234 "),
		Company: strPtr("  Stripe   Inc "),
		Name:    strPtr("Sarah Chen"),
	})

	if got.Email == nil || *got.Email != "sarah.chen@example.com" {
		t.Fatalf("email not cleaned: %v", got.Email)
	}
	if got.Phone == nil || *got.Phone != "+14155551234" {
		t.Fatalf("phone not normalized: %v", got.Phone)
	}
	if got.Company == nil || *got.Company != "Stripe Inc" {
		t.Fatalf("company whitespace not collapsed: %v", got.Company)
	}
	if got.Name == nil || *got.Name != "Sarah Chen" {
		t.Fatalf("name should be untouched: %v", got.Name)
	}
}

func TestContactCleaner_DropsInvalidValues(t *testing.T) {
	c := NewContactCleaner("")
	if c.DefaultRegion != "US" {
		t.Fatalf("expected default region US, got %s", c.DefaultRegion)
	}

	tests := map[string]entity.EnrichedData{
		"malformed email":    {Email: strPtr("invalid@")},
		"dashed domain":      {Email: strPtr("a@-bad.com")},
		"short phone":        {Phone: strPtr("12345")},
		"whitespace company": {Company: strPtr("   ")},
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			got := c.Clean(input)
			if got.Email != nil || got.Phone != nil || got.Company != nil {
				t.Fatalf("expected invalid values dropped, got %+v", got)
			}
		})
	}
}

func TestCleanLinkedInURL(t *testing.T) {
	tests := map[string]struct {
		input   string
		want    string
		wantErr bool
	}{
		"strips tracking": {input: "http://www.linkedin.com/in/sarah?utm_source=x", want: "https://www.linkedin.com/in/sarah"},
		"adds scheme":     {input: "linkedin.com/in/bob", want: "https://linkedin.com/in/bob"},
		"other host":      {input: "https://example.com/in/bob", wantErr: true},
		"empty":           {input: "  ", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := CleanLinkedInURL(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
