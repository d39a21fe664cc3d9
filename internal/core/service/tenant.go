package service

import (
	"net"
	"strings"
)

// FallbackTenant is the hard default used when nothing else resolves.
const FallbackTenant = "salon-booking-saas"

// DefaultHostMarker is the platform suffix a tenant slug sits in front of,
// as in <hash>.<slug>.pages.dev.
const DefaultHostMarker = "pages.dev"

// TenantResolver derives the tenant for a request. Resolution order, first
// non-empty wins: explicit header/body value, query parameter, host slug,
// configured default, FallbackTenant. The result is never empty; no shape
// validation is applied beyond that.
type TenantResolver struct {
	// Default is the environment-configured tenant (may be empty).
	Default string
	// HostMarker overrides DefaultHostMarker when set.
	HostMarker string
}

// Resolve picks the tenant from the already-extracted request values.
func (r TenantResolver) Resolve(explicit, query, host string) string {
	if t := strings.TrimSpace(explicit); t != "" {
		return t
	}
	if t := strings.TrimSpace(query); t != "" {
		return t
	}
	if t := r.hostSlug(host); t != "" {
		return t
	}
	if r.Default != "" {
		return r.Default
	}
	return FallbackTenant
}

// hostSlug extracts the label immediately preceding the platform marker, e.g.
// "acme" from "3f9c2a.acme.pages.dev".
func (r TenantResolver) hostSlug(host string) string {
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	marker := r.HostMarker
	if marker == "" {
		marker = DefaultHostMarker
	}
	rest, ok := strings.CutSuffix(strings.ToLower(host), "."+marker)
	if !ok {
		return ""
	}
	labels := strings.Split(rest, ".")
	return labels[len(labels)-1]
}
