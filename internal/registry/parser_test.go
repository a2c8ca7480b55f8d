package registry

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

func TestParseDocument(t *testing.T) {
	t.Run("labeled details", func(t *testing.T) {
		html := `
		<html><body>
			<div class="company-name"> Acme Construction Ltd </div>
			<div class="company-detail"><span class="label">Registration</span><span class="value">RC-12345</span></div>
			<div class="company-detail"><span class="label">Status</span><span class="value">Active</span></div>
		</body></html>`
		rec, err := ParseDocument(docFromHTML(t, html), "RC-12345")
		if err != nil {
			t.Fatalf("ParseDocument failed: %v", err)
		}
		if rec.Name != "Acme Construction Ltd" {
			t.Errorf("name = %q", rec.Name)
		}
		if rec.Status != "active" {
			t.Errorf("status = %q, want active", rec.Status)
		}
		if !rec.IsActive() {
			t.Error("active company should report IsActive")
		}
	})

	t.Run("h1 fallback and status attribute", func(t *testing.T) {
		html := `
		<html><body>
			<h1>Beta Supplies</h1>
			<div data-company-status="DISSOLVED"></div>
		</body></html>`
		rec, err := ParseDocument(docFromHTML(t, html), "RC-99")
		if err != nil {
			t.Fatalf("ParseDocument failed: %v", err)
		}
		if rec.Name != "Beta Supplies" {
			t.Errorf("name = %q", rec.Name)
		}
		if rec.Status != "dissolved" {
			t.Errorf("status = %q, want dissolved", rec.Status)
		}
		if rec.IsActive() {
			t.Error("dissolved company should not report IsActive")
		}
	})

	t.Run("missing name fails", func(t *testing.T) {
		if _, err := ParseDocument(docFromHTML(t, `<html><body><p>nothing here</p></body></html>`), "RC-1"); err == nil {
			t.Error("page without a company name should fail")
		}
	})
}

func TestIsActive(t *testing.T) {
	tests := []struct {
		status string
		active bool
	}{
		{"active", true},
		{"registered", true},
		{"dissolved", false},
		{"suspended", false},
		{"", false},
	}
	for _, tt := range tests {
		rec := CompanyRecord{Status: tt.status}
		if got := rec.IsActive(); got != tt.active {
			t.Errorf("IsActive(%q) = %v, want %v", tt.status, got, tt.active)
		}
	}
}
