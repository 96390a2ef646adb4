package extractor

import (
	"encoding/json"
	"regexp"
	"strings"
)

// rawRecord is one transaction object as emitted by the model, before
// normalization. Numeric fields arrive as numbers or as strings with
// thousands separators depending on how well the model followed the
// prompt, so they are captured loosely and coerced later.
type rawRecord struct {
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Reference   string     `json:"reference"`
	Debit       flexNumber `json:"debit"`
	Credit      flexNumber `json:"credit"`
	Balance     flexNumber `json:"balance"`
}

// flexNumber keeps the raw token of a numeric field, whether it was a JSON
// number or a quoted string.
type flexNumber string

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if strings.HasPrefix(s, `"`) {
		var unquoted string
		if err := json.Unmarshal(data, &unquoted); err != nil {
			return err
		}
		*f = flexNumber(unquoted)
		return nil
	}
	*f = flexNumber(s)
	return nil
}

type envelope struct {
	Transactions []rawRecord `json:"transactions"`
}

// dateObjectPattern matches one transaction-shaped object anchored on its
// date field, non-greedily, so complete objects survive even when their
// neighbours are mangled.
var dateObjectPattern = regexp.MustCompile(`(?s)\{\s*"date"\s*:\s*"[^"]*".*?\}`)

// decodeRecords recovers transaction objects from the raw model response.
// Stages are attempted in order, each only after the previous one failed
// to parse: strict JSON, bracket-balance repair of a truncated array,
// regex extraction of individual objects. When everything fails the result
// is nil; extraction failure is not an error.
func decodeRecords(raw string) []rawRecord {
	cleaned := stripFences(raw)

	var env envelope
	if err := json.Unmarshal([]byte(cleaned), &env); err == nil {
		return env.Transactions
	}

	if repaired, ok := repairTruncatedArray(cleaned); ok {
		if err := json.Unmarshal([]byte(repaired), &env); err == nil {
			return env.Transactions
		}
	}

	var records []rawRecord
	for _, match := range dateObjectPattern.FindAllString(cleaned, -1) {
		var rec rawRecord
		if err := json.Unmarshal([]byte(match), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// repairTruncatedArray handles the common failure of a response cut off
// mid-array. It locates the transactions array opening, scans bracket
// depth, and when the array never closes before end of input, truncates at
// the last complete object and closes the array and the envelope.
func repairTruncatedArray(s string) (string, bool) {
	keyIdx := strings.Index(s, `"transactions"`)
	if keyIdx == -1 {
		return "", false
	}
	openIdx := strings.Index(s[keyIdx:], "[")
	if openIdx == -1 {
		return "", false
	}
	openIdx += keyIdx

	depth := 0
	inString := false
	escaped := false
	for i := openIdx; i < len(s); i++ {
		ch := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '[' || ch == '{':
			depth++
		case ch == ']' || ch == '}':
			depth--
			if depth == 0 && ch == ']' {
				// Array closes properly; truncation is not the problem.
				return "", false
			}
		}
	}

	lastObj := strings.LastIndex(s, "}")
	if lastObj <= openIdx {
		return "", false
	}
	return s[:lastObj+1] + "]}", true
}

// stripFences removes markdown code fences and keeps the outermost object
// when the model wrapped the JSON in prose. A truncated document has no
// closing brace, in which case everything from the first opening brace on
// is kept for the repair stages.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	if start := strings.Index(s, "{"); start > 0 {
		s = s[start:]
	}
	return s
}
