package verify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pressgauge/pressgauge/internal/model"
)

// stripFences removes incidental markdown code-fence wrapping from oracle
// output. The oracle is instructed not to fence its JSON, but it sometimes
// does anyway; the enclosed payload is still parsed.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line (``` or ```json)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseClaims parses the extraction oracle's output: a JSON array of
// {"claim-query", "original-passage"} objects. Entries with a missing or
// blank field are dropped; malformed JSON fails the whole parse.
func parseClaims(raw string) ([]model.Claim, error) {
	payload := stripFences(raw)

	var claims []model.Claim
	if err := json.Unmarshal([]byte(payload), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	valid := make([]model.Claim, 0, len(claims))
	for _, c := range claims {
		c.QueryText = strings.TrimSpace(c.QueryText)
		c.OriginalPassage = strings.TrimSpace(c.OriginalPassage)
		if c.IsValid() {
			valid = append(valid, c)
		}
	}
	return valid, nil
}

// parseVerdicts parses adjudication output strictly as a sequence of
// verdict records. A bare object is accepted as a one-element sequence.
// Records missing any of the five required fields, or carrying an unknown
// verdict tag, are dropped; the remaining valid records are returned in
// input order. Malformed JSON fails the whole parse.
func parseVerdicts(raw string) ([]model.ClaimVerdict, error) {
	payload := stripFences(raw)

	var records []model.ClaimVerdict
	if strings.HasPrefix(payload, "{") {
		var one model.ClaimVerdict
		if err := json.Unmarshal([]byte(payload), &one); err != nil {
			return nil, fmt.Errorf("parse verdict: %w", err)
		}
		records = []model.ClaimVerdict{one}
	} else {
		if err := json.Unmarshal([]byte(payload), &records); err != nil {
			return nil, fmt.Errorf("parse verdicts: %w", err)
		}
	}

	valid := make([]model.ClaimVerdict, 0, len(records))
	for _, rec := range records {
		rec = rec.Trim()
		if rec.IsValid() {
			valid = append(valid, rec)
		}
	}
	return valid, nil
}
