package templates

// DefaultFooterNote is shown in the shared layout when a page does not supply custom text.
const DefaultFooterNote = "Travel AI delegates all reasoning about places and costs to a language model. Treat results as inspiration, not verified fact."

// HomePageData contains dynamic values rendered on the landing page.
type HomePageData struct {
	PlanCountLabel string
}

// PlanRecommendationView represents a saved recommendation in the plans listing.
type PlanRecommendationView struct {
	City      string
	Style     string
	Places    string
	CreatedAt string
}

// PlanAllocationView represents a saved allocation in the plans listing.
type PlanAllocationView struct {
	TotalBudget string
	Allocated   string
	Items       string
	CreatedAt   string
}

// PlanItineraryView represents a saved itinerary in the plans listing.
type PlanItineraryView struct {
	Cities    string
	Travelers string
	Overview  string
	Items     string
	CreatedAt string
}

// PlansPageData bundles template data for the saved plans page.
type PlansPageData struct {
	Recommendations []PlanRecommendationView
	Allocations     []PlanAllocationView
	Itineraries     []PlanItineraryView
}

// ErrorPageData holds information for rendering an error view.
type ErrorPageData struct {
	StatusLabel string
	Message     string
}
