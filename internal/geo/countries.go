// Package geo supplies the static geography lookup data used by the
// source+geo matching path, plus optional GeoIP enrichment for conversion
// rows that carry an IP but no country code.
package geo

import (
	"strings"
)

// UnknownCountry is the display label for a missing or unmapped country.
const UnknownCountry = "Unknown"

// countryNames maps ISO 3166-1 alpha-2 codes to display names. Read-only.
var countryNames = map[string]string{
	"AR": "Argentina",
	"AT": "Austria",
	"AU": "Australia",
	"BE": "Belgium",
	"BG": "Bulgaria",
	"BR": "Brazil",
	"CA": "Canada",
	"CH": "Switzerland",
	"CL": "Chile",
	"CO": "Colombia",
	"CZ": "Czechia",
	"DE": "Germany",
	"DK": "Denmark",
	"EE": "Estonia",
	"ES": "Spain",
	"FI": "Finland",
	"FR": "France",
	"GB": "United Kingdom",
	"GR": "Greece",
	"HR": "Croatia",
	"HU": "Hungary",
	"ID": "Indonesia",
	"IE": "Ireland",
	"IL": "Israel",
	"IN": "India",
	"IT": "Italy",
	"JP": "Japan",
	"KR": "South Korea",
	"LT": "Lithuania",
	"LV": "Latvia",
	"MX": "Mexico",
	"MY": "Malaysia",
	"NL": "Netherlands",
	"NO": "Norway",
	"NZ": "New Zealand",
	"PE": "Peru",
	"PH": "Philippines",
	"PL": "Poland",
	"PT": "Portugal",
	"RO": "Romania",
	"RS": "Serbia",
	"SE": "Sweden",
	"SG": "Singapore",
	"SK": "Slovakia",
	"TH": "Thailand",
	"TR": "Turkey",
	"UA": "Ukraine",
	"US": "United States",
	"VN": "Vietnam",
	"ZA": "South Africa",
}

// NormalizeCode uppercases and trims a country code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DisplayName resolves a country code to its display name. Missing or
// unmapped codes resolve to UnknownCountry.
func DisplayName(code string) string {
	code = NormalizeCode(code)
	if code == "" {
		return UnknownCountry
	}
	if name, ok := countryNames[code]; ok {
		return name
	}
	return UnknownCountry
}

// Known reports whether the code exists in the static table.
func Known(code string) bool {
	_, ok := countryNames[NormalizeCode(code)]
	return ok
}
