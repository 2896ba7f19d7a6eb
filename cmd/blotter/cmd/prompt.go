package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/blotter/trade"
)

var stdin = bufio.NewReader(os.Stdin)

func prompt(label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}

	line, err := stdin.ReadString('\n')
	if err != nil {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func promptDecimal(label string) (decimal.Decimal, error) {
	s := prompt(label, "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%q is not a decimal", s)
	}
	return d, nil
}

func promptInt(label string, def int) (int, error) {
	s := prompt(label, strconv.Itoa(def))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return n, nil
}

func promptYes(label string) bool {
	s := strings.ToLower(prompt(label+" (y/N)", "n"))
	return s == "y" || s == "yes"
}

// promptRisk runs the pre-trade checklist interactively.
func promptRisk() *trade.Risk {
	fmt.Println("Risk checklist (required for option entries):")
	return &trade.Risk{
		Econ:     promptYes("  economic releases checked?"),
		Earnings: promptYes("  earnings in window?"),
		Bond:     promptYes("  bond auction today?"),
		Note:     prompt("  note", ""),
	}
}

// parseDec wraps decimal parsing with the flag name for the error.
func parseDec(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("--%s: %q is not a decimal", flag, s)
	}
	return d, nil
}
