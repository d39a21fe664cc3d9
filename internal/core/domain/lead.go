package domain

import "errors"

// DefaultToolID tags captured leads with the product that collected them.
const DefaultToolID = "tool_salon_booking_v1"

var ErrInvalidInput = errors.New("invalid input")
var ErrUnauthorized = errors.New("unauthorized")
var ErrUnknownAction = errors.New("unknown action")
var ErrLeadNotFound = errors.New("lead not found")
var ErrUpstream = errors.New("upstream error")

// Lead is a captured contact submission. The pair (tenant, lowercased email)
// is unique: a second submission for the same pair merges into the existing
// record instead of creating a new one.
type Lead struct {
	ID        string `json:"id" bson:"_id"`
	Tenant    string `json:"tenant" bson:"tenant"`
	ToolID    string `json:"toolId" bson:"tool_id"`
	Name      string `json:"name" bson:"name"`
	Email     string `json:"email" bson:"email"`
	Channel   string `json:"channel,omitempty" bson:"channel,omitempty"`
	Note      string `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt int64  `json:"created_at" bson:"created_at"`
}

// Tenant is a catalog entry returned by the tenant.list admin action.
type Tenant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
