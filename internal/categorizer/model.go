package categorizer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Parzival048/booksneo-categorizer/internal/logging"
	"github.com/Parzival048/booksneo-categorizer/internal/models"
	"github.com/Parzival048/booksneo-categorizer/internal/taxonomy"
)

// Completer is the remote text-completion dependency. Implemented by
// gemini.Client and by mocks in tests.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// MaxBatchSize bounds one remote call so responses stay inside a reliable
// token budget.
const MaxBatchSize = 15

// DefaultClassifyTimeout is the wall-clock budget for one batch call.
const DefaultClassifyTimeout = 30 * time.Second

// ModelClassifier sends transaction batches to the remote model and parses
// its suggestions. Every failure mode (network, timeout, malformed output)
// collapses into an error for the whole batch; the pipeline substitutes
// rule results, so nothing here is fatal to callers.
type ModelClassifier struct {
	completer Completer
	timeout   time.Duration
	logger    logging.Logger
}

// NewModelClassifier creates a ModelClassifier. A zero timeout selects
// DefaultClassifyTimeout.
func NewModelClassifier(completer Completer, timeout time.Duration, logger logging.Logger) *ModelClassifier {
	if timeout <= 0 {
		timeout = DefaultClassifyTimeout
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &ModelClassifier{completer: completer, timeout: timeout, logger: logger}
}

// ClassifyBatch classifies up to MaxBatchSize transactions in one remote
// call. The result has one slot per input; a slot is nil when the model
// returned nothing usable for that 1-based index. A returned error means
// the whole batch failed and no slot may be trusted.
func (m *ModelClassifier) ClassifyBatch(ctx context.Context, txns []models.Transaction) ([]*models.Suggestion, error) {
	if len(txns) == 0 {
		return nil, nil
	}
	if len(txns) > MaxBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds maximum %d", len(txns), MaxBatchSize)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	raw, err := m.completer.Complete(ctx, classifySystemPrompt(), classifyUserPayload(txns))
	if err != nil {
		return nil, fmt.Errorf("batch completion: %w", err)
	}

	suggestions, err := parseBatchResponse(raw, len(txns))
	if err != nil {
		return nil, fmt.Errorf("batch response: %w", err)
	}
	return suggestions, nil
}

// classifySystemPrompt enumerates the taxonomy and fixes the output
// contract. The heuristics encode domain knowledge the model tends to get
// wrong on its own.
func classifySystemPrompt() string {
	var sb strings.Builder
	sb.WriteString("You are an accounting assistant that classifies Indian bank-statement transactions.\n")
	sb.WriteString("Allowed categories (use the key exactly as written):\n")
	for _, e := range taxonomy.Entries() {
		sb.WriteString("- ")
		sb.WriteString(e.Key)
		sb.WriteString(": ")
		sb.WriteString(e.Semantics)
		sb.WriteString("\n")
	}
	sb.WriteString(`
Rules:
- A UPI payment to a merchant or business is an EXPENSE (or PURCHASE for stock), never a TRANSFER.
- TRANSFER is only for movement between the user's own accounts, including ATM cash withdrawals.
- A NEFT/RTGS/IMPS credit from a customer is SALES or INCOME, not TRANSFER.
- EMI and loan repayments are LOAN even when routed through auto-debit.
- GST, TDS and other statutory payments are TAX.

Input lines are "index|description|DEBIT amount" or "index|description|CREDIT amount".

Respond with a single JSON object and nothing else:
{"categorizations": [{"index": 1, "category": "EXPENSE", "subcategory": "...", "ledger": "...", "confidence": 85}]}
- "index" is the 1-based input line number.
- "confidence" is an integer 0-100.
- Return exactly one element per input line.
`)
	return sb.String()
}

func classifyUserPayload(txns []models.Transaction) string {
	var sb strings.Builder
	for i, tx := range txns {
		direction := "DEBIT"
		amount := tx.Debit
		if tx.IsInbound() {
			direction = "CREDIT"
			amount = tx.Credit
		}
		fmt.Fprintf(&sb, "%d|%s|%s %s\n", i+1, strings.ReplaceAll(tx.Description, "|", "/"), direction, amount.StringFixed(2))
	}
	return sb.String()
}

type modelItem struct {
	Index       int     `json:"index"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Ledger      string  `json:"ledger"`
	Confidence  float64 `json:"confidence"`
}

// arrayKeys are the response shapes seen in the wild, tried in order.
var arrayKeys = []string{"results", "categorizations", "transactions"}

// parseBatchResponse recovers the suggestion array from the raw model
// output. The array may be the whole document, live under one of several
// keys, or hide behind the first array-valued field of the object.
func parseBatchResponse(raw string, n int) ([]*models.Suggestion, error) {
	cleaned := stripWrapping(raw)

	var items []modelItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		arr, err := findArrayField(cleaned)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(arr, &items); err != nil {
			return nil, fmt.Errorf("decoding suggestion array: %w", err)
		}
	}

	suggestions := make([]*models.Suggestion, n)
	for _, item := range items {
		if item.Index < 1 || item.Index > n {
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(item.Category))
		entry, ok := taxonomy.Lookup(key)
		if !ok {
			continue
		}

		confidence := int(item.Confidence)
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 100 {
			confidence = 100
		}
		subcategory := strings.TrimSpace(item.Subcategory)
		if subcategory == "" {
			subcategory = entry.DefaultSubcategory
		}
		ledger := strings.TrimSpace(item.Ledger)
		if ledger == "" {
			ledger = entry.DefaultLedger
		}

		suggestions[item.Index-1] = &models.Suggestion{
			Category:    key,
			Subcategory: subcategory,
			Ledger:      ledger,
			Confidence:  confidence,
			Source:      models.SourceModel,
			Notes:       "model suggestion",
		}
	}
	return suggestions, nil
}

// findArrayField parses the document as an object and returns the raw
// bytes of the suggestion array: a known key first, otherwise the first
// array-valued field in key order.
func findArrayField(doc string) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &obj); err != nil {
		return nil, fmt.Errorf("decoding response object: %w", err)
	}

	for _, key := range arrayKeys {
		if raw, ok := obj[key]; ok && isJSONArray(raw) {
			return raw, nil
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if isJSONArray(obj[k]) {
			return obj[k], nil
		}
	}
	return nil, fmt.Errorf("no array field in response object")
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return strings.HasPrefix(trimmed, "[")
}

// stripWrapping removes markdown fences and surrounding prose, keeping the
// outermost JSON document. The model occasionally narrates around the JSON
// despite instructions.
func stripWrapping(raw string) string {
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

	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")
	start := objStart
	end := strings.LastIndex(s, "}")
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start = arrStart
		end = strings.LastIndex(s, "]")
	}
	if start != -1 && end > start {
		return s[start : end+1]
	}
	return s
}
