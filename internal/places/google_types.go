package places

// Wire shapes of the Places Web Service JSON responses.

type googleLatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleGeometry struct {
	Location *googleLatLng `json:"location"`
}

type googlePhoto struct {
	PhotoReference   string   `json:"photo_reference"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	HTMLAttributions []string `json:"html_attributions"`
}

type googleOpeningHours struct {
	OpenNow     bool     `json:"open_now"`
	WeekdayText []string `json:"weekday_text"`
}

type googlePlace struct {
	PlaceID          string              `json:"place_id"`
	Name             string              `json:"name"`
	FormattedAddress string              `json:"formatted_address"`
	Geometry         *googleGeometry     `json:"geometry"`
	Photos           []googlePhoto       `json:"photos"`
	Rating           *float64            `json:"rating"`
	UserRatingsTotal *int                `json:"user_ratings_total"`
	OpeningHours     *googleOpeningHours `json:"opening_hours"`
}

type googleDetailsResponse struct {
	Result       *googlePlace `json:"result"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

type googleFindPlaceResponse struct {
	Candidates   []googlePlace `json:"candidates"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
}

type googlePrediction struct {
	Description          string `json:"description"`
	PlaceID              string `json:"place_id"`
	StructuredFormatting struct {
		MainText      string `json:"main_text"`
		SecondaryText string `json:"secondary_text"`
	} `json:"structured_formatting"`
}

type googleAutocompleteResponse struct {
	Predictions  []googlePrediction `json:"predictions"`
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message"`
}
