package progress

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"procurement/models"
)

// рупиевая пометка перед суммой: "Rp", "Rp.", "IDR"
var rupiahMark = regexp.MustCompile(`(?i)(^|[^a-z])(rp|idr)([^a-z]|$)`)

// ParsePrice разбирает цену, введённую текстом: "1,250,000.50", "$ 12 500",
// "Rp 1.500.000", "Rp. 1.500.000,50". Для рупий точка разделяет разряды,
// запятая отделяет дробную часть.
func ParsePrice(s string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		}
		return -1
	}, s)
	// "Rp. 5000" оставляет ведущую точку от префикса валюты
	cleaned = strings.TrimLeft(cleaned, ".,")
	if dotGrouping(s, cleaned) {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// dotGrouping точка как разделитель разрядов (формат id-ID): сумма в рупиях,
// больше одной точки или запятая после последней точки.
func dotGrouping(raw, cleaned string) bool {
	if rupiahMark.MatchString(raw) || strings.Count(cleaned, ".") > 1 {
		return true
	}
	lastDot := strings.LastIndex(cleaned, ".")
	return lastDot >= 0 && strings.LastIndex(cleaned, ",") > lastDot
}

// EffectivePrice пересмотренная цена, если она есть, иначе исходная.
func EffectivePrice(v models.ContractVendor) (decimal.Decimal, bool) {
	if v.RevisedPrice != nil {
		if d, ok := ParsePrice(*v.RevisedPrice); ok {
			return d, true
		}
	}
	if v.Price != nil {
		return ParsePrice(*v.Price)
	}
	return decimal.Zero, false
}

// LowestBidder самый дешёвый кандидат с разобранной ценой. Проваливших KYC не учитываем.
func LowestBidder(vendors []models.ContractVendor) (models.ContractVendor, decimal.Decimal, bool) {
	var (
		best      models.ContractVendor
		bestPrice decimal.Decimal
		found     bool
	)
	for _, v := range vendors {
		if v.KYCResult != nil && *v.KYCResult == models.KYCFail {
			continue
		}
		p, ok := EffectivePrice(v)
		if !ok {
			continue
		}
		if !found || p.LessThan(bestPrice) {
			best, bestPrice, found = v, p, true
		}
	}
	return best, bestPrice, found
}
