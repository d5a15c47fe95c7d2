package marketplace

import "github.com/shopspring/decimal"

// Category is a node of the marketplace category tree.
type Category struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Code               int        `json:"code"`
	Description        string     `json:"description"`
	TeachersCount      int        `json:"teachersCount"`
	ChildrenCategories []Category `json:"childrenCategories"`
}

// Teacher is one search hit. Only the hourly price is consumed.
type Teacher struct {
	ID           string              `json:"id,omitempty"`
	PricePerHour decimal.NullDecimal `json:"pricePerHour"`
}

// Price returns the hourly price, treating a missing or null price as zero.
func (t Teacher) Price() decimal.Decimal {
	if !t.PricePerHour.Valid {
		return decimal.Zero
	}
	return t.PricePerHour.Decimal
}

// TeacherListingPage is one page of search results.
type TeacherListingPage struct {
	Teachers []Teacher `json:"teachers"`
}

type searchRequest struct {
	Categories []int `json:"categories"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
}

type searchResponse struct {
	Teachers *[]Teacher `json:"teachers"`
}

type averagePriceRequest struct {
	CategoryName string  `json:"categoryName"`
	AveragePrice float64 `json:"averagePrice"`
}
