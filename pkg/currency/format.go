package currency

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Format renders amount with the currency's symbol and decimals, for example
// "€57,600.00" or "1,250.00 kr". Unknown codes use the code as symbol.
func (r *Registry) Format(amount float64, code string) string {
	meta, err := r.Get(code)
	if err != nil {
		meta = Meta{Code: code, Symbol: code, Decimals: DefaultDecimals}
	}
	return formatMeta(amount, meta)
}

func formatMeta(amount float64, meta Meta) string {
	digits := printer.Sprint(number.Decimal(amount, number.Scale(meta.Decimals)))
	if meta.SymbolAfter {
		return digits + " " + meta.Symbol
	}
	if len(meta.Symbol) > 1 && meta.Symbol == meta.Code {
		return meta.Symbol + " " + digits
	}
	return meta.Symbol + digits
}
