package constants

import "sort"

// Prefectures lists the prefectures the prediction model currently covers.
var Prefectures = []string{"東京都"}

// regionMapping maps prefecture → city display name → model region key.
// Cities outside this vocabulary cannot be judged.
var regionMapping = map[string]map[string]string{
	"東京都": {
		"杉並区":  "suginami",
		"武蔵野市": "musashino",
		"北区":   "kitaku",
		"中野区":  "nakanoku",
		"練馬区":  "nerimaku",
	},
}

// RegionKey resolves a prefecture/city pair to the key the prediction
// backend understands. ok=false means the city is not in the vocabulary.
func RegionKey(prefecture, city string) (string, bool) {
	cities, ok := regionMapping[prefecture]
	if !ok {
		return "", false
	}
	key, ok := cities[city]
	return key, ok
}

// CitiesFor returns the allowed city names for a prefecture, sorted for
// stable error messages. Nil means the prefecture is unconstrained.
func CitiesFor(prefecture string) []string {
	cities, ok := regionMapping[prefecture]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(cities))
	for name := range cities {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RegionMapping returns a copy of the full vocabulary for presentation.
func RegionMapping() map[string][]string {
	out := make(map[string][]string, len(regionMapping))
	for pref := range regionMapping {
		out[pref] = CitiesFor(pref)
	}
	return out
}
