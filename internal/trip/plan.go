package trip

import "gorm.io/gorm"

// Recommendation is a persisted audit record of a recommendation request.
// Places holds the returned list serialized as JSON text.
type Recommendation struct {
	gorm.Model
	City   string `gorm:"size:255;not null"`
	Style  string `gorm:"size:255;not null"`
	Places string `gorm:"type:text;not null"`
}

// TableName defines the table name for the Recommendation model.
func (Recommendation) TableName() string {
	return "recommendations"
}

// Allocation is a persisted audit record of a budget allocation request.
// Items holds the returned line items serialized as JSON text.
type Allocation struct {
	gorm.Model
	TotalBudget float64 `gorm:"not null"`
	Allocated   float64 `gorm:"not null"`
	Items       string  `gorm:"type:text;not null"`
}

// TableName defines the table name for the Allocation model.
func (Allocation) TableName() string {
	return "allocations"
}

// Itinerary is a persisted audit record of an itinerary request.
// Items holds the generated schedule serialized as JSON text.
type Itinerary struct {
	gorm.Model
	Cities    string `gorm:"size:1024;not null"`
	Travelers int    `gorm:"not null"`
	Overview  string `gorm:"type:text;not null"`
	Items     string `gorm:"type:text;not null"`
}

// TableName defines the table name for the Itinerary model.
func (Itinerary) TableName() string {
	return "itineraries"
}
