package setup

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/auctiondapp/config"
	"github.com/vadiminshakov/auctiondapp/internal/contract"
	"github.com/vadiminshakov/auctiondapp/internal/domain"
)

// DefaultPath is where RunTUI writes when no path is given.
const DefaultPath = "auction.gen.yaml"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// answers collects the wizard input.
type answers struct {
	rpcURL   string
	contract string
	chainID  string
	wallet   string
	approve  string
	unit     string
	listen   string
}

func defaultAnswers() answers {
	return answers{
		rpcURL:   "http://127.0.0.1:8545",
		contract: contract.DefaultAddress,
		wallet:   config.WalletKey,
		approve:  config.ApprovePrompt,
		unit:     domain.DefaultUnitSymbol,
		listen:   ":8000",
	}
}

// RunTUI launches the terminal configuration wizard and writes the result to path.
func RunTUI(path string) error {
	if path == "" {
		path = DefaultPath
	}
	a := defaultAnswers()

	// step 1: network
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("AUCTION CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Point the client at your node and auction contract.\n"))
	fmt.Println(stepStyle.Render("STEP 1: NETWORK"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("JSON-RPC endpoint").
				Value(&a.rpcURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Chain id").
				Description("Leave empty to ask the node").
				Value(&a.chainID).
				Validate(validateChainID),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: contract
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("AUCTION CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: CONTRACT"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Auction contract address").
				Value(&a.contract).
				Validate(validateAddress),
			huh.NewInput().
				Title("Currency symbol").
				Value(&a.unit).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("symbol cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 3: wallet
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("AUCTION CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: WALLET"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Who signs transactions?").
				Options(
					huh.NewOption("Local key (AUCTION_PRIVATE_KEY)", config.WalletKey),
					huh.NewOption("Node-managed accounts", config.WalletNode),
				).
				Value(&a.wallet),
			huh.NewSelect[string]().
				Title("Confirm each request?").
				Options(
					huh.NewOption("Ask before connecting and signing", config.ApprovePrompt),
					huh.NewOption("Approve automatically", config.ApproveAuto),
				).
				Value(&a.approve),
			huh.NewInput().
				Title("Web listen address").
				Value(&a.listen),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	var confirm bool
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("AUCTION CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	tmp := a.toConfig()
	data, err := yaml.Marshal(tmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(string(data)))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s", path)))
	if a.wallet == config.WalletKey {
		fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render(fmt.Sprintf("Export %s before starting the client.", config.PrivateKeyEnv)))
	}
	return nil
}

func (a answers) toConfig() config.ConfigTmp {
	return config.ConfigTmp{
		RPCURL:     strings.TrimSpace(a.rpcURL),
		Contract:   common.HexToAddress(a.contract).Hex(),
		ChainID:    strings.TrimSpace(a.chainID),
		Wallet:     a.wallet,
		Approve:    a.approve,
		UnitSymbol: strings.TrimSpace(a.unit),
		ListenAddr: strings.TrimSpace(a.listen),
	}
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	for _, scheme := range []string{"http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(s, scheme) {
			return nil
		}
	}
	if strings.HasSuffix(s, ".ipc") {
		return nil
	}
	return fmt.Errorf("must be an http(s), ws(s) or .ipc endpoint")
}

func validateChainID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func validateAddress(s string) error {
	if !common.IsHexAddress(strings.TrimSpace(s)) {
		return fmt.Errorf("must be a 0x-prefixed 20 byte address")
	}
	return nil
}
