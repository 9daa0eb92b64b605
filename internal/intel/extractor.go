package intel

import (
	"regexp"
	"strings"
)

// IndicatorSet holds the structured artifacts found in conversation text.
// Values within each kind are deduplicated; slices are never nil so the
// callback payload serializes them as empty arrays.
type IndicatorSet struct {
	BankAccounts       []string `json:"bankAccounts"`
	UPIIDs             []string `json:"upiIds"`
	PhishingLinks      []string `json:"phishingLinks"`
	PhoneNumbers       []string `json:"phoneNumbers"`
	SuspiciousKeywords []string `json:"suspiciousKeywords"`
}

var (
	// 12-digit groups with optional spacing, the typical account-number shape.
	bankAccountRe = regexp.MustCompile(`\b\d{4}[\s-]*\d{4}[\s-]*\d{4}\b`)

	// local-part@handle restricted to known payment-app handles.
	upiRe = regexp.MustCompile(`(?i)[\w.\-]+@(?:paytm|phonepe|gpay|okaxis|okicici|ybl|axl|ibl)\b`)

	// Broader shape used only when no known handle matched; capped by the caller.
	upiBroadRe = regexp.MustCompile(`\b[\w.\-]+@[\w.]+\b`)

	// Indian mobile shape, with or without country-code prefix.
	phoneRe = regexp.MustCompile(`(?:\+91|91|0)?[6-9]\d{9}\b`)

	urlRe = regexp.MustCompile(`(?i)https?://[^\s<>"']+`)

	// Shortened links often appear without a scheme.
	shortLinkRe = regexp.MustCompile(`(?i)\b(?:bit\.ly|tinyurl\.com|t\.co|goo\.gl|tiny\.cc|rb\.gy)/[^\s<>"']+`)
)

// maxBroadUPIMatches caps the broader local-part@domain fallback, which
// would otherwise pick up every email address in the text.
const maxBroadUPIMatches = 5

// defaultKeywords is the base suspicious-keyword vocabulary; matched
// case-insensitively as substrings.
var defaultKeywords = []string{
	"urgent", "verify", "blocked", "suspend", "OTP", "UPI", "bank account",
	"click here", "winner", "prize", "refund", "immediately", "asap",
}

// Extractor finds scam indicators in conversation text. It is pure: the
// same input always yields the same IndicatorSet and nothing is stored.
type Extractor struct {
	keywords []string
}

// NewExtractor creates an extractor whose keyword vocabulary is the
// default list plus any extra entries (e.g. from an external file).
func NewExtractor(extraKeywords []string) *Extractor {
	keywords := make([]string, 0, len(defaultKeywords)+len(extraKeywords))
	keywords = append(keywords, defaultKeywords...)
	for _, k := range extraKeywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return &Extractor{keywords: keywords}
}

// Extract runs all five extractions independently over the same text.
func (e *Extractor) Extract(text string) IndicatorSet {
	set := IndicatorSet{
		BankAccounts:       []string{},
		UPIIDs:             []string{},
		PhishingLinks:      []string{},
		PhoneNumbers:       []string{},
		SuspiciousKeywords: []string{},
	}

	for _, m := range bankAccountRe.FindAllString(text, -1) {
		normalized := strings.NewReplacer(" ", "", "-", "").Replace(m)
		set.BankAccounts = appendUnique(set.BankAccounts, normalized)
	}

	set.UPIIDs = appendAllUnique(set.UPIIDs, upiRe.FindAllString(text, -1))
	if len(set.UPIIDs) == 0 {
		broad := appendAllUnique(nil, upiBroadRe.FindAllString(text, -1))
		if len(broad) > maxBroadUPIMatches {
			broad = broad[:maxBroadUPIMatches]
		}
		set.UPIIDs = append(set.UPIIDs, broad...)
	}

	set.PhoneNumbers = appendAllUnique(set.PhoneNumbers, phoneRe.FindAllString(text, -1))

	set.PhishingLinks = appendAllUnique(set.PhishingLinks, urlRe.FindAllString(text, -1))
	set.PhishingLinks = appendAllUnique(set.PhishingLinks, shortLinkRe.FindAllString(text, -1))

	lower := strings.ToLower(text)
	for _, k := range e.keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			set.SuspiciousKeywords = appendUnique(set.SuspiciousKeywords, k)
		}
	}

	return set
}

// Merge unions b into a so repeated extraction across turns is strictly
// additive. First-seen order is preserved within each kind.
func Merge(a, b IndicatorSet) IndicatorSet {
	return IndicatorSet{
		BankAccounts:       mergeUnique(a.BankAccounts, b.BankAccounts),
		UPIIDs:             mergeUnique(a.UPIIDs, b.UPIIDs),
		PhishingLinks:      mergeUnique(a.PhishingLinks, b.PhishingLinks),
		PhoneNumbers:       mergeUnique(a.PhoneNumbers, b.PhoneNumbers),
		SuspiciousKeywords: mergeUnique(a.SuspiciousKeywords, b.SuspiciousKeywords),
	}
}

func mergeUnique(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = appendAllUnique(out, a)
	out = appendAllUnique(out, b)
	return out
}

func appendAllUnique(dst []string, values []string) []string {
	if dst == nil {
		dst = []string{}
	}
	for _, v := range values {
		dst = appendUnique(dst, v)
	}
	return dst
}

func appendUnique(dst []string, v string) []string {
	for _, existing := range dst {
		if existing == v {
			return dst
		}
	}
	return append(dst, v)
}

// Keywords returns the active keyword vocabulary.
func (e *Extractor) Keywords() []string {
	return e.keywords
}
