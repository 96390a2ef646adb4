package categorizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parzival048/booksneo-categorizer/internal/logging"
	"github.com/Parzival048/booksneo-categorizer/internal/models"
	"github.com/Parzival048/booksneo-categorizer/internal/taxonomy"
)

// mockCompleter is a scriptable Completer for tests.
type mockCompleter struct {
	response string
	err      error
	calls    int
	lastUser string
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	m.calls++
	m.lastUser = user
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestParseBatchResponse_Shapes(t *testing.T) {
	item := `{"index": 1, "category": "EXPENSE", "subcategory": "Rent", "ledger": "Rent Expense", "confidence": 88}`

	tests := []struct {
		name string
		raw  string
	}{
		{"bare array", `[` + item + `]`},
		{"results key", `{"results": [` + item + `]}`},
		{"categorizations key", `{"categorizations": [` + item + `]}`},
		{"transactions key", `{"transactions": [` + item + `]}`},
		{"unknown key with array value", `{"answer": [` + item + `], "note": "done"}`},
		{"markdown fenced", "```json\n{\"results\": [" + item + "]}\n```"},
		{"prose wrapped", "Sure, here are the categorizations:\n{\"results\": [" + item + "]}\nLet me know!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBatchResponse(tt.raw, 1)
			require.NoError(t, err)
			require.Len(t, got, 1)
			require.NotNil(t, got[0])
			assert.Equal(t, taxonomy.Expense, got[0].Category)
			assert.Equal(t, "Rent", got[0].Subcategory)
			assert.Equal(t, 88, got[0].Confidence)
			assert.Equal(t, models.SourceModel, got[0].Source)
		})
	}
}

func TestParseBatchResponse_Validation(t *testing.T) {
	raw := `{"results": [
		{"index": 0, "category": "EXPENSE", "confidence": 80},
		{"index": 1, "category": "GIBBERISH", "confidence": 80},
		{"index": 2, "category": "income", "confidence": 150},
		{"index": 3, "category": "TAX", "confidence": -5},
		{"index": 9, "category": "EXPENSE", "confidence": 80}
	]}`

	got, err := parseBatchResponse(raw, 4)
	require.NoError(t, err)
	require.Len(t, got, 4)

	// Index 0 and 9 are out of range, GIBBERISH is not a category key.
	assert.Nil(t, got[0])
	assert.Nil(t, got[3])

	// Lower-case keys are accepted, confidence is clamped to 0-100.
	require.NotNil(t, got[1])
	assert.Equal(t, taxonomy.Income, got[1].Category)
	assert.Equal(t, 100, got[1].Confidence)
	assert.Equal(t, "Other Income", got[1].Subcategory)

	require.NotNil(t, got[2])
	assert.Equal(t, taxonomy.Tax, got[2].Category)
	assert.Equal(t, 0, got[2].Confidence)
}

func TestParseBatchResponse_Unparsable(t *testing.T) {
	for _, raw := range []string{"", "no json here at all", `{"note": "nothing useful"}`} {
		_, err := parseBatchResponse(raw, 2)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestModelClassifier_ClassifyBatch(t *testing.T) {
	completer := &mockCompleter{
		response: `{"categorizations": [{"index": 2, "category": "SALES", "confidence": 90}]}`,
	}
	classifier := NewModelClassifier(completer, 0, logging.Nop())

	txns := []models.Transaction{
		debitTx("UPI/swiggy/1", 100),
		creditTx("NEFT FROM CUSTOMER", 9000),
	}
	got, err := classifier.ClassifyBatch(context.Background(), txns)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0])
	require.NotNil(t, got[1])
	assert.Equal(t, taxonomy.Sales, got[1].Category)

	// Payload rows carry 1-based indexes and the direction with amount.
	assert.Contains(t, completer.lastUser, "1|UPI/swiggy/1|DEBIT 100.00")
	assert.Contains(t, completer.lastUser, "2|NEFT FROM CUSTOMER|CREDIT 9000.00")
}

func TestModelClassifier_FailuresAreBatchWide(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		completer := &mockCompleter{err: errors.New("connection reset")}
		classifier := NewModelClassifier(completer, 0, logging.Nop())

		_, err := classifier.ClassifyBatch(context.Background(), []models.Transaction{debitTx("x", 1)})
		assert.Error(t, err)
	})

	t.Run("malformed response", func(t *testing.T) {
		completer := &mockCompleter{response: "I could not process that."}
		classifier := NewModelClassifier(completer, 0, logging.Nop())

		_, err := classifier.ClassifyBatch(context.Background(), []models.Transaction{debitTx("x", 1)})
		assert.Error(t, err)
	})

	t.Run("oversized batch rejected", func(t *testing.T) {
		completer := &mockCompleter{response: "[]"}
		classifier := NewModelClassifier(completer, 0, logging.Nop())

		txns := make([]models.Transaction, MaxBatchSize+1)
		_, err := classifier.ClassifyBatch(context.Background(), txns)
		assert.Error(t, err)
		assert.Zero(t, completer.calls)
	})
}

func TestClassifySystemPrompt_EnumeratesTaxonomy(t *testing.T) {
	prompt := classifySystemPrompt()
	for _, key := range taxonomy.Keys() {
		assert.True(t, strings.Contains(prompt, key), "prompt missing %s", key)
	}
	assert.Contains(t, prompt, "categorizations")
}
