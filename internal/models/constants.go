package models

// Page size bounds shared by every list endpoint.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
