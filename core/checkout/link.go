// Package checkout builds the messaging deep links a buyer follows to place an order with a vendor.
package checkout

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/killingspree001/lautechmarket/core"
	"github.com/killingspree001/lautechmarket/core/cart"
)

const (
	BaseURL        = "https://wa.me/"
	CurrencySymbol = "₦"
	Greeting       = "Hello! I'd like to order:"
)

var printer = message.NewPrinter(language.MustParse("en-NG"))

// FormatPrice formats an amount with two fixed decimals and locale grouping, eg. 1234.5 => "1,234.50".
func FormatPrice(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

// OrderMessage renders the plain text order summary of items.
// the total is computed from raw prices, never from the formatted lines.
func OrderMessage(items []cart.Entry) string {
	lines := make([]string, 0, len(items))
	var total float64
	for _, item := range items {
		subtotal := item.Subtotal()
		total += subtotal
		lines = append(lines, item.Product.Name+" (x"+strconv.Itoa(item.Quantity)+") - "+CurrencySymbol+FormatPrice(subtotal))
	}

	var b strings.Builder
	b.WriteString(Greeting)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nTotal: ")
	b.WriteString(CurrencySymbol)
	b.WriteString(FormatPrice(total))
	return b.String()
}

// OrderLink returns the deep link pre-filled with the order summary of items.
// items are expected to belong to the vendor reachable at contactHandle.
func OrderLink(items []cart.Entry, contactHandle string) string {
	return BaseURL + core.DigitsOnly(contactHandle) + "?text=" + escape(OrderMessage(items))
}

// escape encodes s as a query component with spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
