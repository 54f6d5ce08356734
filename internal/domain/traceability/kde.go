package traceability

// KDEFieldType is the declared data type of a key data element
type KDEFieldType string

const (
	KDETypeString KDEFieldType = "string"
	KDETypeNumber KDEFieldType = "number"
	KDETypeDate   KDEFieldType = "date"
	KDETypeArray  KDEFieldType = "array"
)

// KDERange bounds a numeric key data element
type KDERange struct {
	Min float64
	Max float64
}

// KDEFieldDef declares the type, display label, and optional numeric bounds
// of a key data element.
type KDEFieldDef struct {
	Key   string
	Label string
	Type  KDEFieldType
	Range *KDERange
}

// kdeFieldDefs is the registry of every known key data element. Validation
// resolves field definitions here; a field absent from this registry is
// treated as free-form extra data, reported informationally and never
// blocking.
var kdeFieldDefs = map[string]KDEFieldDef{
	"harvest_date":        {Key: "harvest_date", Label: "Harvest date", Type: KDETypeDate},
	"harvest_location":    {Key: "harvest_location", Label: "Harvest location", Type: KDETypeString},
	"field_name":          {Key: "field_name", Label: "Field or growing area name", Type: KDETypeString},
	"cooling_temperature": {Key: "cooling_temperature", Label: "Cooling temperature (°C)", Type: KDETypeNumber, Range: &KDERange{Min: -20, Max: 40}},
	"cooling_method":      {Key: "cooling_method", Label: "Cooling method", Type: KDETypeString},
	"cooling_date":        {Key: "cooling_date", Label: "Cooling date", Type: KDETypeDate},
	"packing_date":        {Key: "packing_date", Label: "Packing date", Type: KDETypeDate},
	"pack_style":          {Key: "pack_style", Label: "Pack style", Type: KDETypeString},
	"packing_line":        {Key: "packing_line", Label: "Packing line identifier", Type: KDETypeString},
	"ship_date":           {Key: "ship_date", Label: "Ship date", Type: KDETypeDate},
	"ship_to_location":    {Key: "ship_to_location", Label: "Ship-to location", Type: KDETypeString},
	"ship_from_location":  {Key: "ship_from_location", Label: "Ship-from location", Type: KDETypeString},
	"carrier":             {Key: "carrier", Label: "Carrier", Type: KDETypeString},
	"receive_date":        {Key: "receive_date", Label: "Receive date", Type: KDETypeDate},
	"received_from":       {Key: "received_from", Label: "Received-from location", Type: KDETypeString},
	"reference_document":  {Key: "reference_document", Label: "Reference document (BOL, PO, invoice)", Type: KDETypeString},
	"parent_lot_codes":    {Key: "parent_lot_codes", Label: "Input lot codes", Type: KDETypeArray},
	"transformation_date": {Key: "transformation_date", Label: "Transformation date", Type: KDETypeDate},
	"output_description":  {Key: "output_description", Label: "Output product description", Type: KDETypeString},
	"disposal_date":       {Key: "disposal_date", Label: "Disposal date", Type: KDETypeDate},
	"disposal_method":     {Key: "disposal_method", Label: "Disposal method", Type: KDETypeString},
	"disposal_reason":     {Key: "disposal_reason", Label: "Disposal reason", Type: KDETypeString},
	"return_date":         {Key: "return_date", Label: "Return date", Type: KDETypeDate},
	"return_reason":       {Key: "return_reason", Label: "Return reason", Type: KDETypeString},
	"humidity_percent":    {Key: "humidity_percent", Label: "Storage humidity (%)", Type: KDETypeNumber, Range: &KDERange{Min: 0, Max: 100}},
	"quantity_cases":      {Key: "quantity_cases", Label: "Quantity in cases", Type: KDETypeNumber, Range: &KDERange{Min: 0, Max: 1_000_000}},
}

// requiredKDEsByEventType maps each event type to its ordered required key
// data elements. The order is preserved in validation output so callers can
// render the full form in regulatory order. Receiving, shipping, and
// disposal variants share their family's rule set but are enumerated
// individually so no variant ever falls through to an empty rule.
var requiredKDEsByEventType = map[EventType][]string{
	EventTypeHarvest:        {"harvest_date", "harvest_location", "field_name"},
	EventTypeCooling:        {"cooling_date", "cooling_temperature", "cooling_method"},
	EventTypeInitialPacking: {"packing_date", "pack_style"},

	EventTypeReceiving:            {"receive_date", "received_from", "reference_document"},
	EventTypeReceivingDistributor: {"receive_date", "received_from", "reference_document"},
	EventTypeReceivingWarehouse:   {"receive_date", "received_from", "reference_document"},
	EventTypeFirstReceiving:       {"receive_date", "received_from", "reference_document"},

	EventTypeShipping:            {"ship_date", "ship_to_location", "ship_from_location"},
	EventTypeShippingDistributor: {"ship_date", "ship_to_location", "ship_from_location"},
	EventTypeDispatch:            {"ship_date", "ship_to_location", "ship_from_location"},

	EventTypeTransformation: {"transformation_date", "parent_lot_codes", "output_description"},

	EventTypeDisposal:    {"disposal_date", "disposal_method"},
	EventTypeWaste:       {"disposal_date", "disposal_method", "disposal_reason"},
	EventTypeDestruction: {"disposal_date", "disposal_method", "disposal_reason"},

	EventTypeReturn: {"return_date", "return_reason"},
}

// optionalKDEsByEventType lists recognized optional fields per event type.
// Present and well-typed optional values raise the completeness score.
var optionalKDEsByEventType = map[EventType][]string{
	EventTypeHarvest:        {"humidity_percent"},
	EventTypeCooling:        {"humidity_percent"},
	EventTypeInitialPacking: {"packing_line", "quantity_cases"},

	EventTypeReceiving:            {"carrier", "quantity_cases"},
	EventTypeReceivingDistributor: {"carrier", "quantity_cases"},
	EventTypeReceivingWarehouse:   {"carrier", "quantity_cases"},
	EventTypeFirstReceiving:       {"carrier", "quantity_cases"},

	EventTypeShipping:            {"carrier", "reference_document", "quantity_cases"},
	EventTypeShippingDistributor: {"carrier", "reference_document", "quantity_cases"},
	EventTypeDispatch:            {"carrier", "reference_document", "quantity_cases"},

	EventTypeTransformation: {"quantity_cases"},

	EventTypeDisposal:    {"disposal_reason"},
	EventTypeWaste:       {},
	EventTypeDestruction: {},

	EventTypeReturn: {"reference_document", "carrier"},
}

// RequiredKDEs returns the ordered required key data elements for an event type
func RequiredKDEs(eventType EventType) []string {
	return requiredKDEsByEventType[eventType]
}

// OptionalKDEs returns the recognized optional key data elements for an event type
func OptionalKDEs(eventType EventType) []string {
	return optionalKDEsByEventType[eventType]
}

// LookupKDEField resolves a field definition from the registry
func LookupKDEField(key string) (KDEFieldDef, bool) {
	def, ok := kdeFieldDefs[key]
	return def, ok
}
