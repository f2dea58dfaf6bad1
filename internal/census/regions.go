package census

import (
	"strings"
)

// All stores in the dataset are in Idaho; demographics resolve at the county
// level. Real lat/lon is not in the dataset, so county assignment is a crude
// city-name heuristic rather than geocoding.
const (
	idahoStateFIPS       = "16"
	jeffersonCountyFIPS  = "065"
	bonnevilleCountyFIPS = "019"
)

// CountyForCity maps a store's city to (state, county) FIPS codes. Cities
// matching the Idaho Falls area land in Bonneville County; everything else
// defaults to Jefferson County (the Rigby area).
func CountyForCity(city string) (stateFIPS, countyFIPS string) {
	upper := strings.ToUpper(city)
	if strings.Contains(upper, "FALLS") || strings.Contains(upper, "IDAHO") {
		return idahoStateFIPS, bonnevilleCountyFIPS
	}
	return idahoStateFIPS, jeffersonCountyFIPS
}
