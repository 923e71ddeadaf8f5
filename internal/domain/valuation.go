package domain

import "github.com/shopspring/decimal"

// USDToSAR is the fixed riyal peg used for every valuation.
const USDToSAR = 3.75

// ScrapValuation is the financial value of a scrap entry at write time.
type ScrapValuation struct {
	CopperMT     float64
	LMEPriceUsed float64
	ValueUSD     float64
	ValueSAR     float64
}

// ValueScrap converts scrap weight and copper content into money at the
// given LME copper price (USD per metric ton).
func ValueScrap(weightKg, copperPercent, lmePrice, fxRate float64) ScrapValuation {
	copperMT := decimal.NewFromFloat(weightKg).
		Mul(decimal.NewFromFloat(copperPercent)).
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(1000))
	usd := copperMT.Mul(decimal.NewFromFloat(lmePrice))
	sar := usd.Mul(decimal.NewFromFloat(fxRate))

	return ScrapValuation{
		CopperMT:     copperMT.InexactFloat64(),
		LMEPriceUsed: lmePrice,
		ValueUSD:     usd.InexactFloat64(),
		ValueSAR:     sar.InexactFloat64(),
	}
}
