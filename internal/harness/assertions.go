package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roach88/camellia/internal/model"
	"github.com/roach88/camellia/internal/store"
)

// AssertionError describes a failed assertion.
type AssertionError struct {
	Index   int
	Type    string
	Message string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion[%d] %s: %s", e.Index, e.Type, e.Message)
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, st *store.Store) []string {
	var failures []string
	for i, a := range assertions {
		var msg string
		switch a.Type {
		case AssertTraceCount:
			msg = assertTraceCount(result.Trace, a)
		case AssertTraceOrder:
			msg = assertTraceOrder(result.Trace, a)
		case AssertFinalState:
			msg = assertFinalState(st, a)
		default:
			msg = fmt.Sprintf("unknown assertion type %q", a.Type)
		}
		if msg != "" {
			failures = append(failures, (&AssertionError{Index: i, Type: a.Type, Message: msg}).Error())
		}
	}
	return failures
}

// assertTraceCount checks that an action occurs exactly Count times,
// optionally restricted to one outcome.
func assertTraceCount(trace []TraceEvent, a Assertion) string {
	n := 0
	for _, ev := range trace {
		if ev.Action == a.Action && (a.Outcome == "" || ev.Outcome == a.Outcome) {
			n++
		}
	}
	if n != a.Count {
		what := a.Action
		if a.Outcome != "" {
			what += " with outcome " + a.Outcome
		}
		return fmt.Sprintf("expected %s %d time(s), found %d", what, a.Count, n)
	}
	return ""
}

// assertTraceOrder checks that the actions occur in the given relative
// order. Other steps may appear in between.
func assertTraceOrder(trace []TraceEvent, a Assertion) string {
	pos := 0
	for _, want := range a.Actions {
		found := false
		for pos < len(trace) {
			ev := trace[pos]
			pos++
			if ev.Action == want {
				found = true
				break
			}
		}
		if !found {
			return fmt.Sprintf("action %s not found in order %v", want, a.Actions)
		}
	}
	return ""
}

func assertFinalState(st *store.Store, a Assertion) string {
	row, err := stateRow(st, a.Table, a.Where)
	if err != nil {
		return err.Error()
	}

	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var problems []string
	for _, k := range keys {
		got, ok := row[k]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s has no field %q", a.Table, k))
			continue
		}
		if !valuesEqual(a.Expect[k], got) {
			problems = append(problems, fmt.Sprintf("%s = %v, want %v", k, got, a.Expect[k]))
		}
	}
	return strings.Join(problems, "; ")
}

// stateRow returns the fields of one record, keyed by assertion field name.
func stateRow(st *store.Store, table string, where map[string]any) (map[string]any, error) {
	switch table {
	case "products":
		id := fmt.Sprint(where["id"])
		p, ok := st.Product(id)
		if !ok {
			return nil, fmt.Errorf("product %s not found", id)
		}
		return map[string]any{
			"id":          p.ID,
			"name":        p.Name,
			"price":       p.Price.String(),
			"description": p.Description,
			"stock":       p.Stock,
			"category":    string(p.Category),
		}, nil

	case "orders":
		id := fmt.Sprint(where["id"])
		o, ok := st.Order(id)
		if !ok {
			return nil, fmt.Errorf("order %s not found", id)
		}
		row := map[string]any{
			"id":     o.ID,
			"buyer":  o.BuyerUsername,
			"room":   o.RoomName,
			"status": string(o.Status),
			"total":  o.TotalAmount.String(),
			"items":  len(o.Items),
		}
		for i, it := range o.Items {
			row[fmt.Sprintf("items.%d.product", i)] = it.Product.ID
			row[fmt.Sprintf("items.%d.name", i)] = it.Product.Name
			row[fmt.Sprintf("items.%d.quantity", i)] = it.Quantity
		}
		return row, nil

	case "users":
		name := fmt.Sprint(where["username"])
		u, ok := st.User(name)
		if !ok {
			return nil, fmt.Errorf("user %s not found", name)
		}
		return map[string]any{"username": u.Username, "role": string(u.Role)}, nil

	case "stats":
		counts := st.StatusCounts()
		row := map[string]any{
			"total_sales": st.TotalSales().String(),
			"delivered":   st.DeliveredCount(),
			"pending":     st.PendingCount(),
			"orders":      len(st.Orders()),
			"products":    len(st.Products()),
			"users":       len(st.Users()),
		}
		for _, s := range model.Statuses {
			row[strings.ToLower(string(s))] = counts[s]
		}
		return row, nil
	}
	return nil, fmt.Errorf("unknown table %q", table)
}

// valuesEqual compares an expected YAML value with an actual one. Numbers
// compare by value, so 30000, "30000" and "30000.0" are equal.
func valuesEqual(expected, actual any) bool {
	e, a := fmt.Sprint(expected), fmt.Sprint(actual)
	if e == a {
		return true
	}
	ed, err1 := decimal.NewFromString(e)
	ad, err2 := decimal.NewFromString(a)
	return err1 == nil && err2 == nil && ed.Equal(ad)
}
