// Package paging normalizes zero-based page requests.
package paging

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps Offset within an int32 for every page size
	MaxPage = math.MaxInt32 / MaxPageSize
)

// Request is a zero-based page request
type Request struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"pageSize" json:"pageSize"`
}

// Normalize applies the defaults and bounds. Negative pages become page 0
// and pages past MaxPage become MaxPage. A missing or non-positive page size
// becomes DefaultPageSize.
func (r Request) Normalize() Request {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Page > MaxPage {
		r.Page = MaxPage
	}
	if r.PageSize <= 0 {
		r.PageSize = DefaultPageSize
	}
	if r.PageSize > MaxPageSize {
		r.PageSize = MaxPageSize
	}
	return r
}

// Limit is the normalized page size
func (r Request) Limit() int {
	return r.Normalize().PageSize
}

// Offset is the number of rows before the normalized page
func (r Request) Offset() int {
	n := r.Normalize()
	return n.Page * n.PageSize
}

// Result is one page of items with the total number of matches
type Result[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
