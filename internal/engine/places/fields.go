package places

import "strings"

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

	findPlacePath = "/findplacefromtext/json"
	detailsPath   = "/details/json"

	// DefaultLanguage is the details language; weekday_text comes back in it.
	DefaultLanguage = "de"
)

// API status values that are not failures.
const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// detailsFields is the fixed field set requested from the details endpoint.
var detailsFields = []string{
	"formatted_address",
	"name",
	"permanently_closed",
	"place_id",
	"type",
	"opening_hours",
	"website",
	"international_phone_number",
	"rating",
}

// DetailsFieldsCSV is the fields parameter sent to the details endpoint.
var DetailsFieldsCSV = strings.Join(detailsFields, ",")

// findPlaceParams are the fixed text-search parameters; input, key and the
// optional locationbias are added per request.
var findPlaceParams = map[string]string{
	"inputtype": "textquery",
	"fields":    "place_id",
}

// ScalarField is a top-level details field stored as its own state.
type ScalarField struct {
	Name string
	Type string // state value type
}

// ScalarFields lists the details fields copied verbatim into states.
var ScalarFields = []ScalarField{
	{Name: "formatted_address", Type: "string"},
	{Name: "international_phone_number", Type: "string"},
	{Name: "name", Type: "string"},
	{Name: "rating", Type: "float"},
	{Name: "types", Type: "array"},
	{Name: "website", Type: "string"},
	{Name: "permanently_closed", Type: "string"},
}
