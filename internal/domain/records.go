package domain

import "time"

// Destination models for the importable record types. The loader writes
// map-shaped records by table name, so these exist for migration and for the
// rest of the platform to query; their columns must stay in step with the
// schema registry's field keys.

// Student is a transported student.
type Student struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	StudentName string    `gorm:"type:text;not null" json:"student_name"`
	Grade       string    `gorm:"type:text;not null" json:"grade"`
	School      string    `gorm:"type:text;not null;index:idx_students_school" json:"school"`
	ParentName  string    `gorm:"type:text" json:"parent_name"`
	ParentPhone string    `gorm:"type:text" json:"parent_phone"`
	ParentEmail string    `gorm:"type:text" json:"parent_email"`
	Address     string    `gorm:"type:text" json:"address"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Student) TableName() string { return "students" }

// Route is a bus route.
type Route struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	RouteNumber string    `gorm:"type:text;not null;uniqueIndex:idx_routes_number" json:"route_number"`
	RouteName   string    `gorm:"type:text;not null" json:"route_name"`
	School      string    `gorm:"type:text;index:idx_routes_school" json:"school"`
	DriverName  string    `gorm:"type:text" json:"driver_name"`
	Capacity    int       `gorm:"default:0" json:"capacity"`
	StartTime   string    `gorm:"type:text" json:"start_time"`
	EndTime     string    `gorm:"type:text" json:"end_time"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Route) TableName() string { return "routes" }

// Stop is one stop on a route. RouteID is resolved at import time from the
// human-readable route number; it stays empty when the number has no match.
type Stop struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	StopName   string    `gorm:"type:text;not null" json:"stop_name"`
	RouteID    string    `gorm:"type:text;index:idx_stops_route" json:"route_id"`
	Sequence   int       `gorm:"default:0" json:"sequence"`
	Latitude   float64   `gorm:"default:0" json:"latitude"`
	Longitude  float64   `gorm:"default:0" json:"longitude"`
	PickupTime string    `gorm:"type:text" json:"pickup_time"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Stop) TableName() string { return "stops" }

// Contract is a district transportation contract.
type Contract struct {
	ID              string    `gorm:"type:text;primaryKey" json:"id"`
	ContractName    string    `gorm:"type:text;not null" json:"contract_name"`
	District        string    `gorm:"type:text;not null;index:idx_contracts_district" json:"district"`
	StartDate       string    `gorm:"type:text" json:"start_date"`
	EndDate         string    `gorm:"type:text" json:"end_date"`
	AnnualValue     float64   `gorm:"default:0" json:"annual_value"`
	BusesContracted int       `gorm:"default:0" json:"buses_contracted"`
	Status          string    `gorm:"type:text" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Contract) TableName() string { return "contracts" }

// PerformanceReview is a driver performance review.
type PerformanceReview struct {
	ID               string    `gorm:"type:text;primaryKey" json:"id"`
	DriverName       string    `gorm:"type:text;not null;index:idx_performance_driver" json:"driver_name"`
	ReviewDate       string    `gorm:"type:text;not null" json:"review_date"`
	SafetyScore      int       `gorm:"default:0" json:"safety_score"`
	PunctualityScore int       `gorm:"default:0" json:"punctuality_score"`
	OverallRating    float64   `gorm:"default:0" json:"overall_rating"`
	Comments         string    `gorm:"type:text" json:"comments"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (PerformanceReview) TableName() string { return "performance_reviews" }
