package currency

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var yenPrinter = message.NewPrinter(language.Japanese)

// FormatYen renders an amount the way the order screen shows prices,
// with the yen sign and thousands separators ("¥1,200").
func FormatYen(amount int64) string {
	return yenPrinter.Sprintf("¥%d", amount)
}
