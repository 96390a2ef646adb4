// Package taxonomy defines the fixed accounting taxonomy used by both the
// rule engine and the model prompt. Category keys are a closed enumeration;
// nothing outside this package introduces new keys at runtime.
package taxonomy

// Category keys.
const (
	Expense    = "EXPENSE"
	Income     = "INCOME"
	Transfer   = "TRANSFER"
	Purchase   = "PURCHASE"
	Sales      = "SALES"
	Tax        = "TAX"
	Loan       = "LOAN"
	Investment = "INVESTMENT"
)

// Entry describes one category: its default suggestion values and the
// one-line semantics handed to the remote model.
type Entry struct {
	Key                string
	Semantics          string
	DefaultSubcategory string
	DefaultLedger      string
	DefaultConfidence  int
}

// entries is ordered; the order is reused verbatim when enumerating the
// taxonomy in the model prompt.
var entries = []Entry{
	{Expense, "money spent on goods, services, bills or fees", "Other Expense", "Miscellaneous Expenses", 60},
	{Income, "money received as salary, interest or other earnings", "Other Income", "Miscellaneous Income", 60},
	{Transfer, "movement between the user's own accounts, incl. cash withdrawals", "Bank Transfer", "Suspense Account", 65},
	{Purchase, "purchase of stock or goods for the business", "Purchases", "Purchase Account", 70},
	{Sales, "revenue from selling goods or services to customers", "Sales", "Sales Account", 70},
	{Tax, "GST, TDS, income tax or other statutory payments", "Taxes", "Duties & Taxes", 85},
	{Loan, "loan disbursal, EMI or other loan repayment", "Loan Payment", "Loan Account", 85},
	{Investment, "mutual funds, shares, deposits and similar placements", "Investments", "Investment Account", 80},
}

var byKey = func() map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.Key] = e
	}
	return m
}()

// Entries returns the taxonomy in prompt order.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Lookup returns the entry for a category key.
func Lookup(key string) (Entry, bool) {
	e, ok := byKey[key]
	return e, ok
}

// IsValid reports whether key belongs to the closed enumeration.
func IsValid(key string) bool {
	_, ok := byKey[key]
	return ok
}

// Keys returns the category keys in prompt order.
func Keys() []string {
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys
}
