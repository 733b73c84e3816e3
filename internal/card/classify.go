package card

import "strings"

type Brand string

const (
	BrandVisa            Brand = "Visa"
	BrandMasterCard      Brand = "MasterCard"
	BrandAmericanExpress Brand = "American Express"
	BrandDiscover        Brand = "Discover"
	BrandUnknown         Brand = "Unknown"
)

// Industry is the major industry identifier carried by the first digit.
type Industry string

const (
	IndustryAirlines                Industry = "Airlines"
	IndustryTravelAndEntertainment  Industry = "Travel and Entertainment"
	IndustryBankingAndFinancial     Industry = "Banking and Financial"
	IndustryMerchandisingAndBanking Industry = "Merchandising and Banking"
	IndustryPetroleum               Industry = "Petroleum"
	IndustryHealthcareTelecom       Industry = "Healthcare, Telecommunications"
	IndustryNationalAssignment      Industry = "National Assignment"
	IndustryUnknown                 Industry = "Unknown"
)

var industries = map[byte]Industry{
	'2': IndustryAirlines,
	'3': IndustryTravelAndEntertainment,
	'4': IndustryBankingAndFinancial,
	'5': IndustryBankingAndFinancial,
	'6': IndustryMerchandisingAndBanking,
	'7': IndustryPetroleum,
	'8': IndustryHealthcareTelecom,
	'9': IndustryNationalAssignment,
}

type Classification struct {
	Brand    Brand
	Industry Industry
}

// Classify returns the issuer brand and industry of a card number. Non-digit
// or empty input is rejected with ErrMalformed.
func Classify(number string) (Classification, error) {
	if err := checkDigits(number); err != nil {
		return Classification{Brand: BrandUnknown, Industry: IndustryUnknown}, err
	}
	return Classification{
		Brand:    BrandOf(number),
		Industry: IndustryOf(number),
	}, nil
}

// BrandOf matches prefixes in precedence order; the first match wins.
func BrandOf(number string) Brand {
	switch {
	case strings.HasPrefix(number, "4"):
		return BrandVisa
	case hasAnyPrefix(number, "51", "52", "53", "54", "55"):
		return BrandMasterCard
	case hasAnyPrefix(number, "34", "37"):
		return BrandAmericanExpress
	case strings.HasPrefix(number, "6"):
		return BrandDiscover
	default:
		return BrandUnknown
	}
}

func IndustryOf(number string) Industry {
	if number == "" {
		return IndustryUnknown
	}
	if industry, ok := industries[number[0]]; ok {
		return industry
	}
	return IndustryUnknown
}

// ProcessorType is the funding instrument type sent to the payment processor.
func (b Brand) ProcessorType() string {
	return strings.ToLower(string(b))
}

func (b Brand) String() string    { return string(b) }
func (i Industry) String() string { return string(i) }

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
