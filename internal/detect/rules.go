package detect

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// scamPatterns is the heuristic rule table. Each pattern is one signal;
// categories: account actions, verification/KYC, OTP/UPI/banking, urgency,
// phishing cues, lottery/prize, refund/cashback, impersonation/authority.
var scamPatterns = compilePatterns([]string{
	// Account status / lock / freeze
	`\b(blocked|suspend|suspended|freeze|frozen|deactivat(e|ed)|reactivat(e|ion))\b`,
	`\b(account\s*(block|lock|suspend|freeze)|lock(ed)?\s*account)\b`,
	`\b(verify|verification|confirm|kyc|know\s*your\s*customer)\s*(now|immediately|urgent|mandatory)?\b`,
	// OTP / UPI / banking
	`\b(OTP|one[\s.]*time[\s.]*password|one[\s.]*time[\s.]*pin)\b`,
	`\b(UPI|upi)\s*(id|link|pin|number)?\b`,
	`\b(bank\s*account|account\s*block|branch\s*name|ifsc|aadhaar|pan\s*card)\b`,
	`\b(card\s*number|cvv|pin\s*code|atm\s*pin)\b`,
	`\b(transfer\s*(money|funds)|send\s*money|pay\s*now)\b`,
	// Urgency / FOMO
	`\b(urgent|immediately|asap|right\s*now|within\s*\d+\s*(min|hour|day)|expir(e|es|ing))\b`,
	`\b(act\s*now|don't\s*delay|last\s*chance|limited\s*time)\b`,
	// Phishing / links
	`\b(click\s*(here|link|now)|link\s*below|open\s*link|secure\s*link)\b`,
	`\b(http[s]?://|bit\.ly|tinyurl|short\s*link)\b`,
	`\b(phish|malicious|fraud|scam|fake)\b`,
	// Lottery / prize / reward
	`\b(winner|won|prize|reward|lottery|jackpot)\s*(claim|click|collect)\b`,
	`\b(congratulations\s*you\s*won|you\s*have\s*won)\b`,
	// Refund / cashback / too-good
	`\b(refund|cashback|reward)\s*(link|click|claim|avail)\b`,
	`\b(free\s*gift|free\s*money|double\s*your\s*money)\b`,
	// Impersonation / authority
	`\b(income\s*tax|tax\s*department|reserve\s*bank|rbi|police\s*complaint)\b`,
	`\b(customer\s*care\s*number|helpline\s*number|call\s*this\s*number)\b`,
})

func compilePatterns(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?i)`+p))
	}
	return out
}

// LoadExtraKeywords reads additional scam keywords from a file, one word
// or phrase per line. Blank lines are skipped.
func LoadExtraKeywords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keywords file: %w", err)
	}
	defer f.Close()

	var keywords []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			keywords = append(keywords, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}
	return keywords, nil
}
