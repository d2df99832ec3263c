// Package wallet declares the opaque collaborator handles node plugins reach
// through reserved execution context parameters. Concrete implementations
// talk to the custodial wallet provider and are wired in at agent setup.
package wallet

// Reserved parameter names resolved by the execution context to injected
// handles instead of configured node values.
const PARAM_SIGNER string = "__signer"
const PARAM_WALLET_SERVICE string = "__walletService"

type Signer interface {
	Sign(payload []byte) ([]byte, error)
	Address() string
}

type Service interface {
	GetBalance(accountId string, asset string) (string, error)
	Transfer(accountId string, asset string, amount string, to string) (string, error)
}
