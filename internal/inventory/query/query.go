// Package query turns list criteria into a single SQL predicate for the store.
package query

import (
	"fmt"
	"strings"
	"time"
)

// Predicate is a WHERE clause with ordinal $n placeholders and its arguments.
// Each placeholder appears once and in ascending order, which both Postgres and
// SQLite bind positionally.
type Predicate struct {
	Where string
	Args  []any
}

// SQL returns the clause ready to append to a SELECT, or "" when unrestricted.
func (p Predicate) SQL() string {
	if p.Where == "" {
		return ""
	}

	return " WHERE " + p.Where
}

// Criteria are the product list restrictions.
type Criteria struct {
	PaymentMode   string
	ExpiringSoon  bool
	ExpiryWindow  int // days, used when ExpiringSoon is set
	LowStock      bool
	LowStockBelow int
	SearchText    string
}

// SaleCriteria are the sales history restrictions. Dates are inclusive.
type SaleCriteria struct {
	ProductID *int64
	StartDate *time.Time
	EndDate   *time.Time
}

type builder struct {
	clauses []string
	args    []any
}

// arg registers a value and returns its placeholder.
func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *builder) add(clause string) {
	b.clauses = append(b.clauses, clause)
}

func (b *builder) predicate() Predicate {
	if len(b.clauses) == 0 {
		return Predicate{}
	}

	return Predicate{
		Where: strings.Join(b.clauses, " AND "),
		Args:  b.args,
	}
}

// Products builds the predicate for the product list. The expiry window runs from
// today through today+ExpiryWindow days inclusive.
func Products(c Criteria, today time.Time) Predicate {
	var b builder

	if c.PaymentMode != "" && c.PaymentMode != "All" {
		b.add("mode_of_payment = " + b.arg(c.PaymentMode))
	}

	if c.ExpiringSoon {
		from, to := Window(today, c.ExpiryWindow)
		b.add(fmt.Sprintf("expiry_date >= %s AND expiry_date <= %s", b.arg(from), b.arg(to)))
	}

	if c.LowStock {
		b.add("quantity_remaining < " + b.arg(c.LowStockBelow))
	}

	if text := strings.TrimSpace(c.SearchText); text != "" {
		pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
		b.add(fmt.Sprintf(`(LOWER(name) LIKE %s ESCAPE '\' OR LOWER(category) LIKE %s ESCAPE '\')`,
			b.arg(pattern), b.arg(pattern)))
	}

	return b.predicate()
}

// Sales builds the predicate for the sales history.
func Sales(c SaleCriteria) Predicate {
	var b builder

	if c.ProductID != nil {
		b.add("product_id = " + b.arg(*c.ProductID))
	}

	if c.StartDate != nil {
		b.add("sale_date >= " + b.arg(c.StartDate.Format(time.DateOnly)))
	}

	if c.EndDate != nil {
		b.add("sale_date <= " + b.arg(c.EndDate.Format(time.DateOnly)))
	}

	return b.predicate()
}

// Window returns the inclusive YYYY-MM-DD bounds [today, today+days].
func Window(today time.Time, days int) (string, string) {
	return today.Format(time.DateOnly), today.AddDate(0, 0, days).Format(time.DateOnly)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
