package chain

// DevelopmentChainID is the chain id shared by the Hardhat and Foundry (anvil) development networks.
const DevelopmentChainID uint64 = 31337

// NativeCurrency describes the currency used to pay for gas on a chain.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Chain describes a blockchain network.
type Chain struct {
	// ID is the EIP-155 chain id.
	ID uint64 `json:"id"`

	// Name is the human-readable name of the chain.
	Name string `json:"name"`

	// Network is the short identifier of the chain, e.g. "sepolia".
	Network string `json:"network"`

	// NativeCurrency describes the chain's gas currency.
	NativeCurrency NativeCurrency `json:"nativeCurrency"`

	// Testnet indicates whether the chain is a public test network.
	Testnet bool `json:"testnet"`

	// Development indicates whether the chain is a local development node.
	Development bool `json:"development"`
}

var ether = NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18}

// Hardhat is the Hardhat Network development chain.
var Hardhat = Chain{ID: DevelopmentChainID, Name: "Hardhat", Network: "hardhat", NativeCurrency: ether, Development: true}

// Foundry is the anvil development chain.
var Foundry = Chain{ID: DevelopmentChainID, Name: "Foundry", Network: "foundry", NativeCurrency: ether, Development: true}

// SupportedChains is the static table of known chains. Chain ids are not unique: several networks have claimed the same
// id over time, and lookups must account for it.
var SupportedChains = []Chain{
	{ID: 1, Name: "Ethereum", Network: "homestead", NativeCurrency: ether},
	{ID: 5, Name: "Goerli", Network: "goerli", NativeCurrency: NativeCurrency{Name: "Goerli Ether", Symbol: "ETH", Decimals: 18}, Testnet: true},
	{ID: 10, Name: "OP Mainnet", Network: "optimism", NativeCurrency: ether},
	{ID: 56, Name: "BNB Smart Chain", Network: "bsc", NativeCurrency: NativeCurrency{Name: "BNB", Symbol: "BNB", Decimals: 18}},
	{ID: 97, Name: "Binance Smart Chain Testnet", Network: "bsc-testnet", NativeCurrency: NativeCurrency{Name: "BNB", Symbol: "tBNB", Decimals: 18}, Testnet: true},
	{ID: 100, Name: "Gnosis", Network: "gnosis", NativeCurrency: NativeCurrency{Name: "Gnosis", Symbol: "xDAI", Decimals: 18}},
	{ID: 137, Name: "Polygon", Network: "matic", NativeCurrency: NativeCurrency{Name: "MATIC", Symbol: "MATIC", Decimals: 18}},
	{ID: 250, Name: "Fantom", Network: "fantom", NativeCurrency: NativeCurrency{Name: "Fantom", Symbol: "FTM", Decimals: 18}},
	{ID: 999, Name: "Wanchain Testnet", Network: "wanchain-testnet", NativeCurrency: NativeCurrency{Name: "WANCHAIN", Symbol: "WANt", Decimals: 18}, Testnet: true},
	{ID: 999, Name: "Zora Goerli Testnet", Network: "zora-testnet", NativeCurrency: NativeCurrency{Name: "Zora Goerli", Symbol: "ETH", Decimals: 18}, Testnet: true},
	{ID: 1337, Name: "Localhost", Network: "localhost", NativeCurrency: ether},
	{ID: 8453, Name: "Base", Network: "base", NativeCurrency: ether},
	{ID: 17000, Name: "Holesky", Network: "holesky", NativeCurrency: ether, Testnet: true},
	{ID: 42161, Name: "Arbitrum One", Network: "arbitrum", NativeCurrency: ether},
	{ID: 43113, Name: "Avalanche Fuji", Network: "avalanche-fuji", NativeCurrency: NativeCurrency{Name: "Avalanche Fuji", Symbol: "AVAX", Decimals: 18}, Testnet: true},
	{ID: 43114, Name: "Avalanche", Network: "avalanche", NativeCurrency: NativeCurrency{Name: "Avalanche", Symbol: "AVAX", Decimals: 18}},
	{ID: 59144, Name: "Linea Mainnet", Network: "linea-mainnet", NativeCurrency: ether},
	{ID: 80002, Name: "Polygon Amoy", Network: "polygon-amoy", NativeCurrency: NativeCurrency{Name: "MATIC", Symbol: "MATIC", Decimals: 18}, Testnet: true},
	{ID: 84532, Name: "Base Sepolia", Network: "base-sepolia", NativeCurrency: NativeCurrency{Name: "Sepolia Ether", Symbol: "ETH", Decimals: 18}, Testnet: true},
	{ID: 421614, Name: "Arbitrum Sepolia", Network: "arbitrum-sepolia", NativeCurrency: NativeCurrency{Name: "Arbitrum Sepolia Ether", Symbol: "ETH", Decimals: 18}, Testnet: true},
	{ID: 534352, Name: "Scroll", Network: "scroll", NativeCurrency: ether},
	{ID: 7777777, Name: "Zora", Network: "zora", NativeCurrency: ether},
	{ID: 11155111, Name: "Sepolia", Network: "sepolia", NativeCurrency: NativeCurrency{Name: "Sepolia Ether", Symbol: "SEP", Decimals: 18}, Testnet: true},
	{ID: 11155420, Name: "OP Sepolia", Network: "optimism-sepolia", NativeCurrency: NativeCurrency{Name: "Sepolia Ether", Symbol: "ETH", Decimals: 18}, Testnet: true},
	Hardhat,
	Foundry,
}

// IsDevelopmentNetwork indicates whether the chain id belongs to a local development node.
func IsDevelopmentNetwork(chainID uint64) bool {
	return chainID == DevelopmentChainID
}

// GetChainsByID returns every chain in SupportedChains with the provided id.
func GetChainsByID(chainID uint64) []Chain {
	matches := make([]Chain, 0, 1)
	for _, c := range SupportedChains {
		if c.ID == chainID {
			matches = append(matches, c)
		}
	}
	return matches
}

// getChainByIDAndName returns the chain in SupportedChains with the provided id and name, if any.
func getChainByIDAndName(chainID uint64, name string) (*Chain, bool) {
	for _, c := range SupportedChains {
		if c.ID == chainID && c.Name == name {
			found := c
			return &found, true
		}
	}
	return nil, false
}
