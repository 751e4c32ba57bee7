package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario, t.TempDir())
			require.NoError(t, err)
			assert.True(t, result.Pass, "failures:\n%s", strings.Join(result.Errors, "\n"))
			assert.Len(t, result.Trace, len(scenario.Flow))
		})
	}
}

func TestCheckoutToDelivery_Golden(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "checkout_to_delivery.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario, t.TempDir())
	require.NoError(t, err)
	assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
}

func TestRun_ReportsMismatches(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong_expectations
description: Every expectation here is wrong.
flow:
  - do: place_order
    args:
      buyer: buyer
      room: "101"
      items: [{product: P001, quantity: 99}]
  - do: place_order
    args:
      buyer: buyer
      room: "101"
      items: [{product: P001, quantity: 1}]
    expect:
      outcome: ok
      result: {total: 1, colour: red}
assertions:
  - type: trace_count
    action: place_order
    count: 5
  - type: trace_order
    actions: [transition, place_order]
  - type: final_state
    table: products
    where: {id: P001}
    expect: {stock: 20, flavour: spicy}
  - type: final_state
    table: orders
    where: {id: NOPE}
    expect: {status: PENDING}
`))
	require.NoError(t, err)

	result, err := Run(scenario, t.TempDir())
	require.NoError(t, err)
	assert.False(t, result.Pass)

	all := strings.Join(result.Errors, "\n")
	assert.Contains(t, all, "flow[0] place_order: expected outcome ok, got INSUFFICIENT_STOCK")
	assert.Contains(t, all, "result.total = 15000, want 1")
	assert.Contains(t, all, `result has no field "colour"`)
	assert.Contains(t, all, "expected place_order 5 time(s), found 2")
	assert.Contains(t, all, "action transition not found")
	assert.Contains(t, all, "stock = 19, want 20")
	assert.Contains(t, all, `products has no field "flavour"`)
	assert.Contains(t, all, "order NOPE not found")
}

func TestRun_BadArgsAbort(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing arg in flow",
			yaml: `
name: bad
description: missing room
flow:
  - do: place_order
    args: {buyer: buyer, items: []}
assertions:
  - {type: trace_count, action: place_order, count: 1}
`,
			want: `flow step 0 (place_order): bad step arguments: "room" is required`,
		},
		{
			name: "bad status",
			yaml: `
name: bad
description: unknown status
flow:
  - do: transition
    args: {order: ORD00001, status: SHIPPED}
assertions:
  - {type: trace_count, action: transition, count: 1}
`,
			want: "unknown order status",
		},
		{
			name: "failing setup",
			yaml: `
name: bad
description: setup must succeed
setup:
  - do: remove_product
    args: {id: P404}
flow:
  - do: reload
assertions:
  - {type: trace_count, action: reload, count: 1}
`,
			want: "setup step 0 (remove_product)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario, err := ParseScenario([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = Run(scenario, t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	const flow = "flow:\n  - do: reload\n"
	const asserts = "assertions:\n  - {type: trace_count, action: reload, count: 1}\n"

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "name: x\ndescription: y\n" + flow + asserts + "assertion: []\n", "failed to parse YAML"},
		{"missing name", "description: y\n" + flow + asserts, "name is required"},
		{"missing description", "name: x\n" + flow + asserts, "description is required"},
		{"missing flow", "name: x\ndescription: y\n" + asserts, "flow list is required"},
		{"missing assertions", "name: x\ndescription: y\n" + flow, "assertions list is required"},
		{"unknown action", "name: x\ndescription: y\nflow:\n  - do: launch\n" + asserts, `flow[0]: unknown action "launch"`},
		{"expect in setup", "name: x\ndescription: y\nsetup:\n  - do: reload\n    expect: {outcome: ok}\n" + flow + asserts, "expect is not allowed in setup"},
		{"expect without outcome", "name: x\ndescription: y\nflow:\n  - do: reload\n    expect: {result: {a: 1}}\n" + asserts, "outcome is required"},
		{"unknown assertion", "name: x\ndescription: y\n" + flow + "assertions:\n  - {type: trace_contains}\n", `unknown assertion type "trace_contains"`},
		{"final_state without where", "name: x\ndescription: y\n" + flow + "assertions:\n  - {type: final_state, table: products, expect: {stock: 1}}\n", "where is required"},
		{"final_state unknown table", "name: x\ndescription: y\n" + flow + "assertions:\n  - {type: final_state, table: rooms, expect: {a: 1}}\n", `unknown table "rooms"`},
		{"final_state without expect", "name: x\ndescription: y\n" + flow + "assertions:\n  - {type: final_state, table: stats}\n", "expect is required"},
		{"trace_order without actions", "name: x\ndescription: y\n" + flow + "assertions:\n  - {type: trace_order}\n", "actions list is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		expected, actual any
		want             bool
	}{
		{30000, "30000", true},
		{"30000.0", "30000", true},
		{18, 18, true},
		{true, true, true},
		{"PENDING", "PENDING", true},
		{"PENDING", "DELIVERED", false},
		{1, "1.5", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, valuesEqual(tt.expected, tt.actual), "%v vs %v", tt.expected, tt.actual)
	}
}
