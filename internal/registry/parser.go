package registry

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// CompanyRecord is what the public corporate registry exposes for a
// registration number.
type CompanyRecord struct {
	RegistrationNo string    `json:"registration_no"`
	Name           string    `json:"name"`
	Status         string    `json:"status"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// Parser fetches and parses company pages from the public corporate registry.
// Lookup is best-effort: onboarding proceeds without it when the registry is
// unreachable.
type Parser struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.Logger
	maxRetries int
}

func NewParser(baseURL string, timeoutMS, maxRetries int, log *zap.Logger) *Parser {
	return &Parser{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
		maxRetries: maxRetries,
	}
}

// Lookup fetches the registry page for a registration number and extracts the
// registered name and status.
func (p *Parser) Lookup(ctx context.Context, registrationNo string) (*CompanyRecord, error) {
	if p.baseURL == "" {
		return nil, fmt.Errorf("registry lookup disabled")
	}
	url := fmt.Sprintf("%s/companies/%s", p.baseURL, registrationNo)

	var doc *goquery.Document
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return nil, fmt.Errorf("registration %s not found in registry", registrationNo)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}

	if lastErr != nil {
		return nil, lastErr
	}

	return ParseDocument(doc, registrationNo)
}

// ParseDocument extracts the company record from a registry page. Split out
// from Lookup so parsing is testable without HTTP.
func ParseDocument(doc *goquery.Document, registrationNo string) (*CompanyRecord, error) {
	rec := &CompanyRecord{
		RegistrationNo: registrationNo,
		FetchedAt:      time.Now(),
	}

	rec.Name = strings.TrimSpace(doc.Find(".company-name").First().Text())
	if rec.Name == "" {
		rec.Name = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find(".company-detail").Each(func(_ int, s *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(s.Find(".label").Text()))
		value := strings.TrimSpace(s.Find(".value").Text())
		if label == "status" {
			rec.Status = strings.ToLower(value)
		}
	})
	if rec.Status == "" {
		if v, ok := doc.Find("[data-company-status]").First().Attr("data-company-status"); ok {
			rec.Status = strings.ToLower(strings.TrimSpace(v))
		}
	}

	if rec.Name == "" {
		return nil, fmt.Errorf("registry page for %s has no company name", registrationNo)
	}
	return rec, nil
}

// IsActive reports whether the registry lists the company as active.
func (r *CompanyRecord) IsActive() bool {
	return r.Status == "active" || r.Status == "registered"
}
