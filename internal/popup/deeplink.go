package popup

import (
	"strconv"

	"mapview_backend/internal/places"
)

const mapLinkBase = "https://maps.google.com/maps"

// MapLink builds the "View on Google Maps" URL for a position, adding the
// place identifier as cid when one is known. The result is not validated.
func MapLink(pos places.Position, id places.PlaceID) string {
	link := mapLinkBase +
		"?ll=" + formatCoord(pos.Lat) + "," + formatCoord(pos.Lng) +
		"&z=21&t=m&hl=en-US&gl=US&mapclient=apiv3"
	if !id.IsZero() {
		link += "&cid=" + id.String()
	}
	return link
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
