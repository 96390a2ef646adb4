// Package categorizer implements the hybrid categorization pipeline: a
// deterministic keyword rule engine, a batched remote-model pass, and a
// confidence-based merge of the two. The pipeline never fails the caller;
// every remote problem degrades to the rule result for the affected batch.
package categorizer

import (
	"context"

	"github.com/Parzival048/booksneo-categorizer/internal/logging"
	"github.com/Parzival048/booksneo-categorizer/internal/models"
)

// HighConfidence is the reporting threshold for the completion log event.
const HighConfidence = 80

// Categorizer orchestrates rule and model classification. A nil model
// classifier selects the offline path: rule results only, no network.
type Categorizer struct {
	rules  *RuleClassifier
	model  *ModelClassifier
	logger logging.Logger
}

// New creates a Categorizer. Pass a nil model classifier when no remote
// credential is configured.
func New(rules *RuleClassifier, model *ModelClassifier, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Categorizer{rules: rules, model: model, logger: logger}
}

// Categorize enriches every transaction with a category suggestion. The
// result has the same length and order as the input. Remote failures are
// absorbed per batch; a canceled context makes the remaining batches fall
// back to their rule results, so the caller still receives a full-length
// list.
func (c *Categorizer) Categorize(ctx context.Context, txns []models.Transaction) []models.CategorizedTransaction {
	if len(txns) == 0 {
		return []models.CategorizedTransaction{}
	}

	c.logger.WithField("count", len(txns)).Info("categorization started")

	ruleResults := make([]models.Suggestion, len(txns))
	for i, tx := range txns {
		ruleResults[i] = c.rules.Classify(tx)
	}

	final := make([]models.Suggestion, len(txns))
	copy(final, ruleResults)

	if c.model != nil {
		c.runModelPass(ctx, txns, ruleResults, final)
	}

	results := make([]models.CategorizedTransaction, len(txns))
	highConfidence := 0
	for i := range txns {
		results[i] = models.CategorizedTransaction{Transaction: txns[i], Suggestion: final[i]}
		if final[i].Confidence >= HighConfidence {
			highConfidence++
		}
	}

	c.logger.WithFields(
		logging.Field{Key: "count", Value: len(results)},
		logging.Field{Key: "high_confidence", Value: highConfidence},
	).Info("categorization done")

	return results
}

// runModelPass walks the fixed-size batches in order, classifying each
// sequentially. Failures are contained: batch N never affects batch N-1 or
// N+1. Model suggestions are matched to transactions by their 1-based
// position within the batch.
func (c *Categorizer) runModelPass(ctx context.Context, txns []models.Transaction, ruleResults, final []models.Suggestion) {
	for start := 0; start < len(txns); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(txns) {
			end = len(txns)
		}

		if ctx.Err() != nil {
			c.logger.WithError(ctx.Err()).Warn("categorization canceled, remaining batches use rule results")
			return
		}

		modelResults, err := c.model.ClassifyBatch(ctx, txns[start:end])
		if err != nil {
			c.logger.WithError(err).WithFields(
				logging.Field{Key: "batch_start", Value: start},
				logging.Field{Key: "batch_size", Value: end - start},
			).Warn("batch failed, falling back to rule results")
			continue
		}

		for i := start; i < end; i++ {
			final[i] = Merge(ruleResults[i], modelResults[i-start])
		}

		c.logger.WithFields(
			logging.Field{Key: "batch_start", Value: start},
			logging.Field{Key: "batch_size", Value: end - start},
		).Debug("batch done")
	}
}
