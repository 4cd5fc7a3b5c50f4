package catalog

// Package is a priced service offering.
type Package struct {
	Title     string   `json:"title"`
	Features  []string `json:"features"`
	Price     string   `json:"price"`
	BestValue bool     `json:"best_value,omitempty"`
}

const contactForPricing = "Contact for Pricing"

var (
	optRetouching = "Optional: Premium Retouching ($30/image)"
	optExpress    = "Optional: Express Delivery ($50)"
	optRaw        = "Optional: Raw Files ($500)"
	optSecond     = "Optional: Extra Photographer ($25/hr)"
)

var pricing = map[string][]Package{
	Portraits: {
		{
			Title:    "Essential Package",
			Features: []string{"1 Hour Photoshoot", "1 Location", "Includes Standard Editing", "1 Revision", optRetouching, optExpress, optRaw},
			Price:    "$140",
		},
		{
			Title:    "Extended Package",
			Features: []string{"2 Hours Photoshoot", "1 Location", "Includes Standard Editing", "2 Revisions", optRetouching, optExpress, optRaw},
			Price:    "$270",
		},
		{
			Title:    "Custom Package",
			Features: []string{"Custom Photoshoot", "Includes Standard Editing", optRetouching, optExpress, optRaw},
			Price:    contactForPricing,
		},
	},
	Events: {
		{
			Title:    "Photos or Video",
			Features: []string{"Only Photos or Video", "Includes Standard Editing", "2 Revisions", optSecond, optRetouching, optExpress, optRaw},
			Price:    "$120/hr",
		},
		{
			Title:     "Photo + Video",
			Features:  []string{"Photos and Video", "Includes Standard Editing", "2 Revisions", optSecond, optRetouching, optExpress, optRaw},
			Price:     "$140/hr",
			BestValue: true,
		},
		{
			Title:    "Custom Package",
			Features: []string{"Custom Event", "Custom Hours", "Includes Standard Editing", optSecond, optRetouching, optExpress, optRaw},
			Price:    contactForPricing,
		},
	},
	Cars: {
		{
			Title:    "Photos Only",
			Features: []string{"1 Hour Photoshoot", "1 Location", "Car Only", "Includes Standard Editing", "1 Revision", optRetouching, optExpress, optRaw},
			Price:    "$120",
		},
		{
			Title:    "Photo & Video",
			Features: []string{"1 Hour Photoshoot", "1 Location", "Car + Driver", "Includes Standard Editing", "1 Revision", optRetouching, optExpress, optRaw},
			Price:    "$140",
		},
		{
			Title:    "Custom Package",
			Features: []string{"Custom Photoshoot", "Includes Standard Editing", optRetouching, optExpress, optRaw},
			Price:    contactForPricing,
		},
	},
}

// PricedSlugs lists the categories with published pricing, in display order.
func PricedSlugs() []string {
	return []string{Portraits, Events, Cars}
}

// Pricing returns the packages offered for a category slug.
// Categories without published pricing return nil.
func Pricing(slug string) []Package {
	pkgs, ok := pricing[slug]
	if !ok {
		return nil
	}
	out := make([]Package, len(pkgs))
	for i, p := range pkgs {
		p.Features = append([]string(nil), p.Features...)
		out[i] = p
	}
	return out
}
