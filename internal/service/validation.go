package service

import (
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/Helmus101/confluence/internal/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "US"
	linkedInDomain     = "linkedin.com"
)

// ContactCleaner normalizes the identifying fields produced by enrichment.
// Values that fail validation are dropped rather than stored.
type ContactCleaner struct {
	DefaultRegion string
}

// NewContactCleaner builds a cleaner; phone numbers without a country code
// are parsed in defaultRegion.
func NewContactCleaner(defaultRegion string) *ContactCleaner {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &ContactCleaner{DefaultRegion: region}
}

// Clean returns a copy of data with email, phone and company cleaned.
func (c *ContactCleaner) Clean(data entity.EnrichedData) entity.EnrichedData {
	if data.Email != nil {
		data.Email = optional(cleanEmail(*data.Email))
	}
	if data.Phone != nil {
		data.Phone = optional(normalizePhone(*data.Phone, c.DefaultRegion))
	}
	if data.Company != nil {
		data.Company = optional(strings.Join(strings.Fields(*data.Company), " "))
	}
	return data
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func cleanEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailPattern.MatchString(email) {
		return ""
	}
	parts := strings.SplitN(email, "@", 2)
	if !isDomainValid(parts[1]) {
		return ""
	}
	asciiDomain, err := idnaProfile.ToASCII(parts[1])
	if err != nil || asciiDomain == "" {
		return ""
	}
	return parts[0] + "@" + asciiDomain
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = defaultPhoneRegion
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// CleanLinkedInURL forces https, strips tracking parameters and rejects
// hosts other than linkedin.com.
func CleanLinkedInURL(raw string) (string, error) {
	u, err := sanitizeURL(raw)
	if err != nil {
		return "", err
	}
	host := strings.ToLower(strings.Trim(u.Hostname(), "."))
	if host != linkedInDomain && !strings.HasSuffix(host, "."+linkedInDomain) {
		return "", errors.New("not a linkedin url")
	}
	stripTracking(u)
	return u.String(), nil
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	u.Scheme = "https"
	return u, nil
}

func stripTracking(u *url.URL) {
	if u == nil {
		return
	}
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
