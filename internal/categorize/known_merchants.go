package categorize

import (
	"sort"

	"github.com/piggybook/smsledger/internal/model"
)

// knownMerchants is the curated fallback table of common merchants. It is
// consulted before any external classification call and works with the
// classifier disabled entirely.
var knownMerchants = map[string]model.Category{
	// FOOD
	"ZOMATO":         model.CategoryFood,
	"SWIGGY":         model.CategoryFood,
	"DOMINOS":        model.CategoryFood,
	"PIZZA HUT":      model.CategoryFood,
	"MCDONALDS":      model.CategoryFood,
	"MCDONALD":       model.CategoryFood,
	"KFC":            model.CategoryFood,
	"BURGER KING":    model.CategoryFood,
	"SUBWAY":         model.CategoryFood,
	"STARBUCKS":      model.CategoryFood,
	"DUNZO":          model.CategoryFood,
	"BLINKIT":        model.CategoryFood,
	"ZEPTO":          model.CategoryFood,
	"INSTAMART":      model.CategoryFood,
	"BIGBASKET":      model.CategoryFood,
	"GROFERS":        model.CategoryFood,
	"DMART":          model.CategoryFood,
	"RELIANCE FRESH": model.CategoryFood,

	// SHOPPING
	"AMAZON":           model.CategoryShopping,
	"AMAZON PAY":       model.CategoryShopping,
	"AMAZON PAY INDIA": model.CategoryShopping,
	"FLIPKART":         model.CategoryShopping,
	"MYNTRA":           model.CategoryShopping,
	"AJIO":             model.CategoryShopping,
	"NYKAA":            model.CategoryShopping,
	"MEESHO":           model.CategoryShopping,
	"SNAPDEAL":         model.CategoryShopping,
	"CROMA":            model.CategoryShopping,
	"RELIANCE DIGITAL": model.CategoryShopping,
	"DECATHLON":        model.CategoryShopping,

	// TRANSPORT
	"UBER":             model.CategoryTransport,
	"UBER INDIA":       model.CategoryTransport,
	"OLA":              model.CategoryTransport,
	"OLA CABS":         model.CategoryTransport,
	"RAPIDO":           model.CategoryTransport,
	"IRCTC":            model.CategoryTransport,
	"MAKEMYTRIP":       model.CategoryTransport,
	"GOIBIBO":          model.CategoryTransport,
	"REDBUS":           model.CategoryTransport,
	"YATRA":            model.CategoryTransport,
	"CLEARTRIP":        model.CategoryTransport,
	"INDIAN OIL":       model.CategoryTransport,
	"HP PETROL":        model.CategoryTransport,
	"BHARAT PETROLEUM": model.CategoryTransport,
	"FASTAG":           model.CategoryTransport,
	"METRO":            model.CategoryTransport,
	"DMRC":             model.CategoryTransport,

	// ENTERTAINMENT
	"NETFLIX":        model.CategoryEntertainment,
	"HOTSTAR":        model.CategoryEntertainment,
	"DISNEY HOTSTAR": model.CategoryEntertainment,
	"PRIME VIDEO":    model.CategoryEntertainment,
	"SPOTIFY":        model.CategoryEntertainment,
	"YOUTUBE":        model.CategoryEntertainment,
	"GAANA":          model.CategoryEntertainment,
	"JIOSAAVN":       model.CategoryEntertainment,
	"BOOKMYSHOW":     model.CategoryEntertainment,
	"PVR":            model.CategoryEntertainment,
	"INOX":           model.CategoryEntertainment,
	"SONY LIV":       model.CategoryEntertainment,
	"ZEE5":           model.CategoryEntertainment,

	// UTILITIES
	"AIRTEL":           model.CategoryUtilities,
	"JIO":              model.CategoryUtilities,
	"VODAFONE":         model.CategoryUtilities,
	"VI":               model.CategoryUtilities,
	"BSNL":             model.CategoryUtilities,
	"TATA POWER":       model.CategoryUtilities,
	"ADANI GAS":        model.CategoryUtilities,
	"MAHANAGAR GAS":    model.CategoryUtilities,
	"BESCOM":           model.CategoryUtilities,
	"MSEDCL":           model.CategoryUtilities,
	"ACT FIBERNET":     model.CategoryUtilities,
	"HATHWAY":          model.CategoryUtilities,
	"LIC":              model.CategoryUtilities,
	"HDFC LIFE":        model.CategoryUtilities,
	"ICICI PRUDENTIAL": model.CategoryUtilities,
}

// knownMerchantKeys holds the table keys sorted by descending length then
// lexically, so substring scans resolve deterministically and prefer the
// most specific key.
var knownMerchantKeys = func() []string {
	keys := make([]string, 0, len(knownMerchants))
	for k := range knownMerchants {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()
