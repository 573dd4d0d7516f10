// Package types holds request and response helpers shared by the API handlers
package types

// OffsetQuery is the limit/offset pair of list endpoints.
// Zero or out-of-range values are clamped by the services.
type OffsetQuery struct {
	Limit  int `form:"limit" json:"limit"`
	Offset int `form:"offset" json:"offset"`
}

// LimitQuery is for endpoints without paging
type LimitQuery struct {
	Limit int `form:"limit" json:"limit"`
}
