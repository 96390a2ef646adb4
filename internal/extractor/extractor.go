// Package extractor recovers structured transaction records from raw
// document text (OCR output, PDF text layers) via the remote model, with a
// multi-stage JSON repair cascade for truncated or malformed responses.
package extractor

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Parzival048/booksneo-categorizer/internal/logging"
	"github.com/Parzival048/booksneo-categorizer/internal/models"
)

const (
	// MinInputLength gates obviously empty documents before any network
	// call is made.
	MinInputLength = 50

	// MaxInputLength caps the text sent to the model so the response
	// stays reliably small. Trading recall on very long statements for a
	// parseable response is deliberate; it is a documented limitation.
	MaxInputLength = 4000

	// DefaultExtractTimeout is longer than the classification budget
	// because the input payload is much larger.
	DefaultExtractTimeout = 90 * time.Second
)

// Completer is the remote text-completion dependency.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Extractor asks the remote model for structured transaction records and
// repairs whatever it gets back. A nil completer selects the offline path:
// Extract returns an empty list without touching the network.
type Extractor struct {
	completer Completer
	timeout   time.Duration
	logger    logging.Logger
}

// New creates an Extractor. A zero timeout selects DefaultExtractTimeout.
func New(completer Completer, timeout time.Duration, logger logging.Logger) *Extractor {
	if timeout <= 0 {
		timeout = DefaultExtractTimeout
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Extractor{completer: completer, timeout: timeout, logger: logger}
}

const extractSystemPrompt = `You extract bank-statement transactions from raw text.
Respond with a single JSON object and nothing else, exactly in this shape:
{"transactions": [{"date": "...", "description": "...", "debit": 0, "credit": 0}]}
- "debit" and "credit" are plain numbers without thousands separators.
- Keep the date string exactly as it appears in the text.
- Skip header, footer, balance-summary and page-number lines.
- Every transaction has either a debit or a credit, not both.`

// Extract returns the normalized records found in rawText. It never
// returns an error: unusable input, a missing credential, remote failure
// and unrepairable output all yield an empty list.
func (e *Extractor) Extract(ctx context.Context, rawText string) []models.Record {
	text := strings.TrimSpace(rawText)
	if e.completer == nil || len(text) < MinInputLength {
		return []models.Record{}
	}
	if len(text) > MaxInputLength {
		text = text[:MaxInputLength]
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.logger.WithField("input_chars", len(text)).Info("extraction started")

	raw, err := e.completer.Complete(ctx, extractSystemPrompt, text)
	if err != nil {
		e.logger.WithError(err).Warn("extraction completion failed")
		return []models.Record{}
	}

	records := normalize(decodeRecords(raw))
	e.logger.WithField("count", len(records)).Info("extraction done")
	return records
}

// normalize coerces raw model output into valid records. A record without
// a date, or with zero on both sides, is silently dropped; it is
// indistinguishable from the model not finding a transaction there.
func normalize(raws []rawRecord) []models.Record {
	records := make([]models.Record, 0, len(raws))
	for _, r := range raws {
		date := strings.TrimSpace(r.Date)
		debit := models.ParseAmount(string(r.Debit)).Abs()
		credit := models.ParseAmount(string(r.Credit)).Abs()
		if date == "" || (debit.IsZero() && credit.IsZero()) {
			continue
		}

		rec := models.Record{
			ID:          uuid.NewString(),
			Date:        date,
			Description: strings.TrimSpace(r.Description),
			Reference:   strings.TrimSpace(r.Reference),
			Debit:       debit,
			Credit:      credit,
			Balance:     models.ParseAmount(string(r.Balance)).Abs(),
		}
		if credit.IsPositive() {
			rec.Type = models.TypeCredit
			rec.Amount = credit
		} else {
			rec.Type = models.TypeDebit
			rec.Amount = debit
		}
		records = append(records, rec)
	}
	return records
}
