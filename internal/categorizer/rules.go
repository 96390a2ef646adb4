package categorizer

import (
	"strings"

	"github.com/Parzival048/booksneo-categorizer/internal/logging"
	"github.com/Parzival048/booksneo-categorizer/internal/models"
	"github.com/Parzival048/booksneo-categorizer/internal/taxonomy"
)

// template holds the fixed suggestion values a rule group produces.
// Confidences are calibrated policy constants, not computed.
type template struct {
	category    string
	subcategory string
	ledger      string
	confidence  int
}

// ruleGroup is one entry of the classification cascade. Groups are
// evaluated in order and the first match wins. A group matches when any of
// its keywords occurs in the lower-cased description. Direction-sensitive
// groups carry a separate inbound template; resolve, when set, replaces
// the templates entirely (used for UPI merchant subpatterns).
type ruleGroup struct {
	name     string
	keywords []string
	outbound template
	inbound  *template
	resolve  func(desc string, inbound bool) template
}

// RuleClassifier is the deterministic, offline half of the pipeline. It is
// a pure function of the description text and the credit/debit sign, and
// it never fails.
type RuleClassifier struct {
	groups []ruleGroup
	logger logging.Logger
}

// NewRuleClassifier builds a classifier over the built-in cascade.
// Custom keyword rules, when provided, are evaluated before the built-in
// groups so user configuration can shadow them.
func NewRuleClassifier(custom []taxonomy.KeywordRule, logger logging.Logger) *RuleClassifier {
	if logger == nil {
		logger = logging.Nop()
	}

	groups := make([]ruleGroup, 0, len(custom)+len(builtinGroups))
	for _, r := range custom {
		groups = append(groups, ruleGroup{
			name:     "custom:" + r.Name,
			keywords: lowered(r.Keywords),
			outbound: template{r.Category, r.Subcategory, r.Ledger, r.Confidence},
		})
	}
	groups = append(groups, builtinGroups...)

	return &RuleClassifier{groups: groups, logger: logger}
}

// Classify assigns a suggestion to a single transaction. It always
// succeeds; when no group matches it falls back to a direction-dependent
// default with confidence 60.
func (c *RuleClassifier) Classify(tx models.Transaction) models.Suggestion {
	desc := strings.ToLower(tx.Description)
	inbound := tx.IsInbound()

	for _, g := range c.groups {
		if !containsAny(desc, g.keywords) {
			continue
		}

		t := g.outbound
		if g.resolve != nil {
			t = g.resolve(desc, inbound)
		} else if inbound && g.inbound != nil {
			t = *g.inbound
		}

		c.logger.WithFields(
			logging.Field{Key: "group", Value: g.name},
			logging.Field{Key: "category", Value: t.category},
		).Debug("rule match")

		return models.Suggestion{
			Category:    t.category,
			Subcategory: t.subcategory,
			Ledger:      t.ledger,
			Confidence:  t.confidence,
			Source:      models.SourceRule,
			Notes:       "matched rule group: " + g.name,
		}
	}

	if inbound {
		return models.Suggestion{
			Category:    taxonomy.Income,
			Subcategory: "Other Income",
			Ledger:      "Miscellaneous Income",
			Confidence:  60,
			Source:      models.SourceRule,
			Notes:       "no rule matched, credit default",
		}
	}
	return models.Suggestion{
		Category:    taxonomy.Expense,
		Subcategory: "Other Expense",
		Ledger:      "Miscellaneous Expenses",
		Confidence:  60,
		Source:      models.SourceRule,
		Notes:       "no rule matched, debit default",
	}
}

// builtinGroups is the ordered cascade. Order matters: high-precision
// groups come first, low-precision catch-alls (generic UPI, generic bank
// transfer) last before the default.
var builtinGroups = []ruleGroup{
	{
		name:     "salary",
		keywords: []string{"salary", "sal cr", "payroll", "stipend"},
		outbound: template{taxonomy.Expense, "Salaries & Wages", "Salary Expense", 90},
		inbound:  &template{taxonomy.Income, "Salary", "Salary Account", 95},
	},
	{
		name:     "rent",
		keywords: []string{"rent"},
		outbound: template{taxonomy.Expense, "Rent", "Rent Expense", 90},
		inbound:  &template{taxonomy.Income, "Rental Income", "Rent Received", 90},
	},
	{
		name:     "utility",
		keywords: []string{"electricity", "elec bill", "water bill", "gas bill", "power bill", "bescom", "mseb"},
		outbound: template{taxonomy.Expense, "Utilities", "Electricity & Water Expense", 90},
	},
	{
		name:     "telecom",
		keywords: []string{"airtel", "jio", "vodafone", "bsnl", "broadband", "recharge", "dth"},
		outbound: template{taxonomy.Expense, "Telephone & Internet", "Communication Expense", 90},
	},
	{
		name:     "bank-charges",
		keywords: []string{"bank chg", "chrg", "sms chg", "chgs", "charges", "min bal", "amc"},
		outbound: template{taxonomy.Expense, "Bank Charges", "Bank Charges", 95},
	},
	{
		name:     "atm-cash",
		keywords: []string{"atm", "cash wdl", "csh wdl", "cash withdrawal", "self wdl"},
		outbound: template{taxonomy.Transfer, "Cash Withdrawal", "Cash Account", 90},
	},
	{
		name:     "interest",
		keywords: []string{"int.pymt", "interest", "int cr", "int paid"},
		outbound: template{taxonomy.Expense, "Interest", "Interest Expense", 90},
		inbound:  &template{taxonomy.Income, "Interest", "Interest Income", 90},
	},
	{
		name:     "tax",
		keywords: []string{"gst", "income tax", "tds", "advance tax", "itns", "tax pymt"},
		outbound: template{taxonomy.Tax, "Taxes", "Duties & Taxes", 90},
	},
	{
		name:     "loan-emi",
		keywords: []string{"emi", "loan", "instalment", "installment"},
		outbound: template{taxonomy.Loan, "Loan EMI", "Loan Account", 90},
	},
	{
		name:     "upi",
		keywords: []string{"upi"},
		resolve:  resolveUPI,
	},
	{
		name:     "bank-transfer",
		keywords: []string{"neft", "rtgs", "imps", "fund trf", "ft-"},
		outbound: template{taxonomy.Transfer, "Transfer Out", "Suspense Account", 70},
		inbound:  &template{taxonomy.Transfer, "Transfer In", "Suspense Account", 70},
	},
}

// upiMerchants maps merchant keywords inside a UPI reference to templates.
// Evaluated in order; earlier entries win ties.
var upiMerchants = []struct {
	keywords []string
	tmpl     template
}{
	{[]string{"swiggy", "zomato", "dominos", "eatfit"}, template{taxonomy.Expense, "Food & Dining", "Food & Dining Expense", 90}},
	{[]string{"bigbasket", "blinkit", "zepto", "dmart", "grofers"}, template{taxonomy.Expense, "Groceries", "Groceries Expense", 90}},
	{[]string{"uber", "ola", "rapido", "irctc", "redbus"}, template{taxonomy.Expense, "Travel", "Travel Expense", 85}},
	{[]string{"amazon", "flipkart", "myntra", "meesho", "ajio"}, template{taxonomy.Purchase, "Online Shopping", "Purchase Account", 85}},
	{[]string{"netflix", "spotify", "hotstar", "primevideo"}, template{taxonomy.Expense, "Subscriptions", "Subscription Expense", 85}},
}

func resolveUPI(desc string, inbound bool) template {
	for _, m := range upiMerchants {
		if containsAny(desc, m.keywords) {
			return m.tmpl
		}
	}
	if inbound {
		return template{taxonomy.Income, "UPI Receipt", "UPI Collections", 65}
	}
	return template{taxonomy.Expense, "UPI Payment", "UPI Payments", 65}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func lowered(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, k := range keywords {
		out[i] = strings.ToLower(k)
	}
	return out
}
