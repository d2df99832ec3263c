package node

import (
	"fmt"

	"github.com/mohitkumar/flowpilot/model"
	"github.com/mohitkumar/flowpilot/wallet"
)

var _ Plugin = new(walletBalanceNode)

// walletBalanceNode fetches an account balance through the injected wallet
// service handle. A provider error for one item is encoded in the item's
// payload rather than failing the run, so downstream nodes can branch on it.
type walletBalanceNode struct{}

func (d *walletBalanceNode) Descriptor() Descriptor {
	return Descriptor{
		Name:        "walletBalance",
		DisplayName: "Wallet Balance",
		Group:       "wallet",
		Inputs:      1,
		Outputs:     1,
		Parameters: []ParameterSpec{
			{Name: "account", DisplayName: "Account", Type: "string", Required: true},
			{Name: "asset", DisplayName: "Asset", Type: "string", Default: "USDC"},
		},
		Notify: true,
	}
}

func (d *walletBalanceNode) Execute(ctx *ExecutionContext) ([][]model.ExecutionItem, error) {
	service, ok := ctx.GetParameter(wallet.PARAM_WALLET_SERVICE, 0, nil).(wallet.Service)
	if !ok {
		return nil, fmt.Errorf("node %s: wallet service not configured", ctx.Node().Id)
	}
	items := ctx.GetInputData(0)
	output := make([]model.ExecutionItem, 0, len(items))
	for i := range items {
		account := fmt.Sprintf("%v", ctx.GetParameter("account", i, ""))
		asset := fmt.Sprintf("%v", ctx.GetParameter("asset", i, "USDC"))
		balance, err := service.GetBalance(account, asset)
		if err != nil {
			output = append(output, model.NewExecutionItem(map[string]any{
				"success": false,
				"error":   err.Error(),
				"account": account,
				"asset":   asset,
			}))
			continue
		}
		output = append(output, model.NewExecutionItem(map[string]any{
			"success": true,
			"account": account,
			"asset":   asset,
			"balance": balance,
		}))
	}
	return [][]model.ExecutionItem{output}, nil
}
