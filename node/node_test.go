package node

import (
	"errors"
	"sort"
	"testing"

	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/wallet"
	"github.com/stretchr/testify/require"
)

func singleInput(items ...model.ExecutionItem) [][]model.ExecutionItem {
	return [][]model.ExecutionItem{items}
}

func TestGetParameterResolvesExpressions(t *testing.T) {
	n := &model.Node{
		Id:   "n1",
		Type: "test",
		Parameters: map[string]any{
			"literal":  "hello",
			"path":     "$.user.name",
			"template": "balance of {$.user.name} in {$.asset}",
		},
	}
	input := singleInput(model.NewExecutionItem(map[string]any{
		"user":  map[string]any{"name": "alice"},
		"asset": "USDC",
	}))
	ctx := NewExecutionContext(n, input, nil)

	require.Equal(t, "hello", ctx.GetParameter("literal", 0, nil))
	require.Equal(t, "alice", ctx.GetParameter("path", 0, nil))
	require.Equal(t, "balance of alice in USDC", ctx.GetParameter("template", 0, nil))
	require.Equal(t, "fallback", ctx.GetParameter("missing", 0, "fallback"))
}

func TestGetParameterUnresolvableExpressionFallsBackToDefault(t *testing.T) {
	n := &model.Node{Id: "n1", Parameters: map[string]any{"path": "$.nope"}}
	ctx := NewExecutionContext(n, singleInput(model.NewExecutionItem(map[string]any{"a": 1})), nil)

	require.Equal(t, "dflt", ctx.GetParameter("path", 0, "dflt"))
}

func TestGetParameterReturnsCapabilityHandle(t *testing.T) {
	svc := &fakeWalletService{balance: "42"}
	n := &model.Node{Id: "n1", Parameters: map[string]any{}}
	ctx := NewExecutionContext(n, nil, map[string]any{wallet.PARAM_WALLET_SERVICE: svc})

	handle := ctx.GetParameter(wallet.PARAM_WALLET_SERVICE, 0, nil)
	require.Same(t, svc, handle)
}

func TestGetInputDataSynthesizesEmptyItem(t *testing.T) {
	ctx := NewExecutionContext(&model.Node{Id: "n1"}, nil, nil)

	items := ctx.GetInputData(0)
	require.Len(t, items, 1)
	require.Empty(t, items[0].Json)
}

func TestTriggerNodeEmitsPayload(t *testing.T) {
	n := &model.Node{
		Id:         "t1",
		Type:       "manualTrigger",
		Parameters: map[string]any{"payload": map[string]any{"source": "api"}},
	}
	plugin := &triggerNode{}

	output, err := plugin.Execute(NewExecutionContext(n, nil, nil))
	require.NoError(t, err)
	require.Len(t, output, 1)
	require.Len(t, output[0], 1)
	require.Equal(t, "api", output[0][0].Json["source"])
}

func TestJsNodeTransformsEachItem(t *testing.T) {
	n := &model.Node{
		Id:   "js1",
		Type: "javascript",
		Parameters: map[string]any{
			"script": "$.doubled = $.n * 2;",
		},
	}
	input := singleInput(
		model.NewExecutionItem(map[string]any{"n": 2}),
		model.NewExecutionItem(map[string]any{"n": 5}),
	)
	plugin := &jsNode{}

	output, err := plugin.Execute(NewExecutionContext(n, input, nil))
	require.NoError(t, err)
	require.Len(t, output[0], 2)
	require.EqualValues(t, 4, output[0][0].Json["doubled"])
	require.EqualValues(t, 10, output[0][1].Json["doubled"])
}

func TestJsNodeEmptyScriptFails(t *testing.T) {
	n := &model.Node{Id: "js1", Type: "javascript", Parameters: map[string]any{}}
	plugin := &jsNode{}

	_, err := plugin.Execute(NewExecutionContext(n, nil, nil))
	require.Error(t, err)
}

func TestJsonMapNodeProjectsItems(t *testing.T) {
	n := &model.Node{
		Id:   "m1",
		Type: "jsonMap",
		Parameters: map[string]any{
			"mapping": map[string]any{
				"who":   "$.user.name",
				"label": "acct-{$.user.id}",
			},
		},
	}
	input := singleInput(model.NewExecutionItem(map[string]any{
		"user": map[string]any{"name": "alice", "id": 7},
	}))
	plugin := &jsonMapNode{}

	output, err := plugin.Execute(NewExecutionContext(n, input, nil))
	require.NoError(t, err)
	require.Equal(t, "alice", output[0][0].Json["who"])
	require.Equal(t, "acct-7", output[0][0].Json["label"])
}

func TestSwitchNodeRoutesByCase(t *testing.T) {
	n := &model.Node{
		Id:   "s1",
		Type: "switch",
		Parameters: map[string]any{
			"expression": "$.kind",
			"cases":      []any{"deposit", "withdrawal"},
		},
	}
	input := singleInput(
		model.NewExecutionItem(map[string]any{"kind": "deposit"}),
		model.NewExecutionItem(map[string]any{"kind": "withdrawal"}),
		model.NewExecutionItem(map[string]any{"kind": "unknown"}),
	)
	plugin := &switchNode{}

	output, err := plugin.Execute(NewExecutionContext(n, input, nil))
	require.NoError(t, err)
	require.Len(t, output, switchOutputs)
	require.Len(t, output[0], 1)
	require.Equal(t, "deposit", output[0][0].Json["kind"])
	require.Len(t, output[1], 1)
	require.Equal(t, "withdrawal", output[1][0].Json["kind"])
	// unmatched items fall through to the last port
	require.Len(t, output[switchOutputs-1], 1)
	require.Equal(t, "unknown", output[switchOutputs-1][0].Json["kind"])
}

type fakeWalletService struct {
	balance string
	err     error
	calls   []string
}

func (f *fakeWalletService) GetBalance(accountId string, asset string) (string, error) {
	f.calls = append(f.calls, accountId+"/"+asset)
	if f.err != nil {
		return "", f.err
	}
	return f.balance, nil
}

func (f *fakeWalletService) Transfer(accountId string, asset string, amount string, to string) (string, error) {
	return "", errors.New("not supported")
}

func TestWalletBalanceNodeFetchesPerItem(t *testing.T) {
	svc := &fakeWalletService{balance: "12.5"}
	n := &model.Node{
		Id:   "w1",
		Type: "walletBalance",
		Parameters: map[string]any{
			"account": "$.account",
			"asset":   "ETH",
		},
	}
	input := singleInput(model.NewExecutionItem(map[string]any{"account": "acc-9"}))
	ctx := NewExecutionContext(n, input, map[string]any{wallet.PARAM_WALLET_SERVICE: svc})
	plugin := &walletBalanceNode{}

	output, err := plugin.Execute(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"acc-9/ETH"}, svc.calls)
	require.Equal(t, true, output[0][0].Json["success"])
	require.Equal(t, "12.5", output[0][0].Json["balance"])
}

func TestWalletBalanceNodeEncodesProviderErrorInItem(t *testing.T) {
	svc := &fakeWalletService{err: errors.New("rate limited")}
	n := &model.Node{
		Id:         "w1",
		Type:       "walletBalance",
		Parameters: map[string]any{"account": "acc-9"},
	}
	ctx := NewExecutionContext(n, nil, map[string]any{wallet.PARAM_WALLET_SERVICE: svc})
	plugin := &walletBalanceNode{}

	output, err := plugin.Execute(ctx)
	require.NoError(t, err)
	require.Equal(t, false, output[0][0].Json["success"])
	require.Contains(t, output[0][0].Json["error"], "rate limited")
}

func TestWalletBalanceNodeFailsWithoutService(t *testing.T) {
	n := &model.Node{Id: "w1", Type: "walletBalance", Parameters: map[string]any{"account": "acc-9"}}
	plugin := &walletBalanceNode{}

	_, err := plugin.Execute(NewExecutionContext(n, nil, nil))
	require.Error(t, err)
}

func TestRegistryRejectsDuplicateAndListsDescriptors(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, RegisterBuiltins(r))

	err := r.Register("switch", func() Plugin { return &switchNode{} })
	require.Error(t, err)

	descriptors := r.Descriptors()
	require.Len(t, descriptors, 6)
	names := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		names = append(names, d.Name)
	}
	require.True(t, sort.StringsAreSorted(names))
	require.Contains(t, names, "manualTrigger")
	require.Contains(t, names, "walletBalance")
}
