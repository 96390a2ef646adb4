package categorizer

import (
	"github.com/Parzival048/booksneo-categorizer/internal/models"
)

// Merge picks the final suggestion for one transaction. A missing model
// result always yields the rule result. Otherwise the strictly higher
// confidence wins; ties go to the rule result because the deterministic
// source is auditable. Pure and total.
func Merge(ruleResult models.Suggestion, modelResult *models.Suggestion) models.Suggestion {
	if modelResult == nil {
		return ruleResult
	}
	if modelResult.Confidence > ruleResult.Confidence {
		return *modelResult
	}
	return ruleResult
}
