package categorizer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Parzival048/booksneo-categorizer/internal/logging"
	"github.com/Parzival048/booksneo-categorizer/internal/models"
	"github.com/Parzival048/booksneo-categorizer/internal/taxonomy"
)

// seqCompleter returns one scripted outcome per call, in order.
type seqCompleter struct {
	outcomes []func() (string, error)
	calls    int
}

func (s *seqCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	if s.calls >= len(s.outcomes) {
		return "", errors.New("unexpected extra call")
	}
	outcome := s.outcomes[s.calls]
	s.calls++
	return outcome()
}

func respondAll(n int, category string, confidence int) func() (string, error) {
	return func() (string, error) {
		out := `{"categorizations": [`
		for i := 1; i <= n; i++ {
			if i > 1 {
				out += ","
			}
			out += fmt.Sprintf(`{"index": %d, "category": %q, "confidence": %d}`, i, category, confidence)
		}
		return out + `]}`, nil
	}
}

func fail() (string, error) {
	return "", errors.New("upstream timeout")
}

func manyTxns(n int) []models.Transaction {
	txns := make([]models.Transaction, n)
	for i := range txns {
		txns[i] = debitTx(fmt.Sprintf("XYZ UNKNOWN MERCHANT %d", i), 10)
	}
	return txns
}

func TestCategorize_EmptyInput(t *testing.T) {
	completer := &seqCompleter{}
	pipeline := New(
		NewRuleClassifier(nil, logging.Nop()),
		NewModelClassifier(completer, 0, logging.Nop()),
		logging.Nop(),
	)

	got := pipeline.Categorize(context.Background(), nil)
	assert.Empty(t, got)
	assert.Zero(t, completer.calls, "empty input must not call the model")
}

func TestCategorize_OfflineDeterminism(t *testing.T) {
	pipeline := New(NewRuleClassifier(nil, logging.Nop()), nil, logging.Nop())
	txns := []models.Transaction{
		debitTx("UPI/swiggy/order123", 250),
		creditTx("INT.PYMT credit", 50),
	}

	first := pipeline.Categorize(context.Background(), txns)
	second := pipeline.Categorize(context.Background(), txns)
	assert.Equal(t, first, second)
	for _, r := range first {
		assert.Equal(t, models.SourceRule, r.Source)
	}
}

func TestCategorize_TotalityUnderRemoteFailure(t *testing.T) {
	outcomes := make([]func() (string, error), 3)
	for i := range outcomes {
		outcomes[i] = fail
	}
	pipeline := New(
		NewRuleClassifier(nil, logging.Nop()),
		NewModelClassifier(&seqCompleter{outcomes: outcomes}, 0, logging.Nop()),
		logging.Nop(),
	)

	txns := manyTxns(33)
	got := pipeline.Categorize(context.Background(), txns)

	require.Len(t, got, len(txns))
	for i, r := range got {
		assert.Equal(t, txns[i].Description, r.Description, "order preserved")
		assert.Equal(t, models.SourceRule, r.Source)
	}
}

func TestCategorize_BatchIsolation(t *testing.T) {
	// Three batches of 15/15/5; only the middle one fails.
	completer := &seqCompleter{outcomes: []func() (string, error){
		respondAll(15, taxonomy.Purchase, 90),
		fail,
		respondAll(5, taxonomy.Purchase, 90),
	}}
	pipeline := New(
		NewRuleClassifier(nil, logging.Nop()),
		NewModelClassifier(completer, 0, logging.Nop()),
		logging.Nop(),
	)

	txns := manyTxns(35)
	got := pipeline.Categorize(context.Background(), txns)

	require.Len(t, got, 35)
	assert.Equal(t, 3, completer.calls)
	for i, r := range got {
		if i >= 15 && i < 30 {
			assert.Equal(t, models.SourceRule, r.Source, "failed batch falls back at %d", i)
			assert.Equal(t, taxonomy.Expense, r.Category)
		} else {
			assert.Equal(t, models.SourceModel, r.Source, "healthy batch keeps model result at %d", i)
			assert.Equal(t, taxonomy.Purchase, r.Category)
		}
	}
}

func TestCategorize_ArbitrationPerTransaction(t *testing.T) {
	// The rule result for a GST payment has confidence 90; a weaker model
	// suggestion must not displace it, while the weak default on the
	// unknown merchant must yield to the model.
	completer := &seqCompleter{outcomes: []func() (string, error){
		func() (string, error) {
			return `{"categorizations": [
				{"index": 1, "category": "EXPENSE", "confidence": 70},
				{"index": 2, "category": "PURCHASE", "confidence": 85}
			]}`, nil
		},
	}}
	pipeline := New(
		NewRuleClassifier(nil, logging.Nop()),
		NewModelClassifier(completer, 0, logging.Nop()),
		logging.Nop(),
	)

	txns := []models.Transaction{
		debitTx("GST PMT ITNS 281", 12000),
		debitTx("XYZ UNKNOWN MERCHANT 123", 75),
	}
	got := pipeline.Categorize(context.Background(), txns)

	require.Len(t, got, 2)
	assert.Equal(t, taxonomy.Tax, got[0].Category)
	assert.Equal(t, models.SourceRule, got[0].Source)
	assert.Equal(t, taxonomy.Purchase, got[1].Category)
	assert.Equal(t, models.SourceModel, got[1].Source)
}

func TestCategorize_CanceledContextReturnsFullList(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	completer := &seqCompleter{}
	pipeline := New(
		NewRuleClassifier(nil, logging.Nop()),
		NewModelClassifier(completer, 0, logging.Nop()),
		logging.Nop(),
	)

	txns := manyTxns(20)
	got := pipeline.Categorize(ctx, txns)

	require.Len(t, got, 20)
	for _, r := range got {
		assert.Equal(t, models.SourceRule, r.Source)
	}
	assert.Zero(t, completer.calls)
}
