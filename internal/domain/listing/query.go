package listing

import (
	"math"
	"reflect"
	"strconv"
)

const earthRadiusKm = 6371.0

// FilterCriteria narrows a listing search. Zero values mean "not set".
type FilterCriteria struct {
	SaleType      string
	Postcode      string
	Distance      *float64 // radius in km
	UserLatitude  *float64
	UserLongitude *float64
}

func (c *FilterCriteria) empty() bool {
	return c == nil || (c.SaleType == "" && c.Postcode == "" && c.Distance == nil && c.UserLatitude == nil && c.UserLongitude == nil)
}

// FilterListings returns the listings that match every criterion set. With nil or empty
// criteria the input slice itself is returned. The input is never modified.
func FilterListings(listings []*Listing, criteria *FilterCriteria) []*Listing {
	if criteria.empty() {
		return listings
	}

	useDistance := criteria.Distance != nil && criteria.UserLatitude != nil && criteria.UserLongitude != nil

	filtered := make([]*Listing, 0, len(listings))
	for _, l := range listings {
		if criteria.SaleType != "" && criteria.SaleType != SaleTypeAll && l.SaleType != criteria.SaleType {
			continue
		}
		if criteria.Postcode != "" && l.Postcode != criteria.Postcode {
			continue
		}
		if useDistance {
			d := HaversineKm(*criteria.UserLatitude, *criteria.UserLongitude, l.Latitude, l.Longitude)
			if d > *criteria.Distance {
				continue
			}
		}
		filtered = append(filtered, l)
	}
	return filtered
}

// HaversineKm is the great-circle distance between two points in kilometres
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// IsListingSaved reports whether any saved entry refers to listingID. Comparison is
// type-strict: the int 1 does not match the string "1".
func IsListingSaved(listingID any, saved []SavedListing) bool {
	if listingID == nil {
		return false
	}
	idType := reflect.TypeOf(listingID)
	if !idType.Comparable() {
		return false
	}
	for _, s := range saved {
		if s.GarageSaleID == nil || reflect.TypeOf(s.GarageSaleID) != idType {
			continue
		}
		if s.GarageSaleID == listingID {
			return true
		}
	}
	return false
}

// ProximityGroups holds listings bucketed by rounded coordinates. Keys keeps the
// order in which buckets were first seen.
type ProximityGroups struct {
	Keys   []string
	Groups map[string][]*Listing
}

// GroupListingsByProximity buckets listings by coordinates rounded to the nearest 0.5
// degree, keyed "<lat>,<lon>". Order of appearance is kept within each bucket.
func GroupListingsByProximity(listings []*Listing) *ProximityGroups {
	result := &ProximityGroups{
		Keys:   []string{},
		Groups: make(map[string][]*Listing),
	}
	for _, l := range listings {
		key := ProximityKey(l.Latitude, l.Longitude)
		if _, ok := result.Groups[key]; !ok {
			result.Keys = append(result.Keys, key)
		}
		result.Groups[key] = append(result.Groups[key], l)
	}
	return result
}

// ProximityKey rounds both coordinates to the nearest half degree, ties toward +Inf
func ProximityKey(lat, lon float64) string {
	return formatCoord(roundHalf(lat)) + "," + formatCoord(roundHalf(lon))
}

func roundHalf(v float64) float64 {
	return math.Floor(v*2+0.5) / 2
}

func formatCoord(v float64) string {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
