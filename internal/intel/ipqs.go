package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/marthaea/link-guardian-safecheck/internal/target"
)

const ipqsBaseURL = "https://ipqualityscore.com/api/json/url"

// IPQSClient queries the IPQualityScore URL reputation API.
type IPQSClient struct {
	apiKey     string
	strictness int
	httpClient *http.Client
	baseURL    string
	logger     zerolog.Logger
}

// ipqsResponse mirrors the fields of the IPQS payload the scanner uses.
// Everything beyond success is optional on the wire.
type ipqsResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RiskScore  *int   `json:"risk_score"`
	Unsafe     bool   `json:"unsafe"`
	Phishing   bool   `json:"phishing"`
	Suspicious bool   `json:"suspicious"`
	Spamming   bool   `json:"spamming"`
	Malware    bool   `json:"malware"`
	DomainAge  *int   `json:"domain_age"`
	Country    string `json:"country_code"`
}

// NewIPQSClient creates a client for the real IPQS API. strictness is the
// API's 0-2 scan aggressiveness setting.
func NewIPQSClient(apiKey string, strictness int, logger zerolog.Logger) *IPQSClient {
	return &IPQSClient{
		apiKey:     apiKey,
		strictness: strictness,
		httpClient: &http.Client{},
		baseURL:    ipqsBaseURL,
		logger:     logger,
	}
}

// Name implements Source.
func (c *IPQSClient) Name() string { return "IPQS" }

// Lookup queries IPQS for the normalized input. The context deadline is
// the only timeout; the caller owns it.
func (c *IPQSClient) Lookup(ctx context.Context, tgt target.Parsed) (Signal, error) {
	endpoint := fmt.Sprintf("%s/%s/%s?strictness=%d",
		c.baseURL, c.apiKey, url.QueryEscape(tgt.Normalized), c.strictness)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Signal{}, fmt.Errorf("building IPQS request: %w", err)
	}
	req.Header.Set("User-Agent", "LinkGuardian/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Signal{}, fmt.Errorf("calling IPQS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Signal{}, fmt.Errorf("IPQS returned status %d", resp.StatusCode)
	}

	var body ipqsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Signal{}, fmt.Errorf("decoding IPQS response: %w", err)
	}
	if !body.Success {
		return Signal{}, fmt.Errorf("IPQS lookup failed: %s", body.Message)
	}

	c.logger.Debug().
		Str("domain", tgt.Domain).
		Bool("unsafe", body.Unsafe).
		Msg("IPQS lookup complete")

	return Signal{
		Service:       c.Name(),
		RiskScore:     body.RiskScore,
		Phishing:      body.Phishing,
		Suspicious:    body.Suspicious || body.Unsafe,
		Spamming:      body.Spamming,
		Malware:       body.Malware,
		DomainAgeDays: body.DomainAge,
		CountryCode:   body.Country,
	}, nil
}
