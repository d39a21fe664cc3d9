package service

import "testing"

func TestTenantResolver_Order(t *testing.T) {
	r := TenantResolver{Default: "env-default"}

	cases := []struct {
		name     string
		explicit string
		query    string
		host     string
		want     string
	}{
		{"explicit wins", "acme", "other", "x.beta.pages.dev", "acme"},
		{"query beats host", "", "acme", "x.beta.pages.dev", "acme"},
		{"host slug", "", "", "3f9c2a.acme.pages.dev", "acme"},
		{"host slug no hash", "", "", "acme.pages.dev", "acme"},
		{"host with port", "", "", "3f9c2a.acme.pages.dev:8443", "acme"},
		{"host case folded", "", "", "ACME.Pages.Dev", "acme"},
		{"unrelated host falls through", "", "", "www.example.com", "env-default"},
		{"empty everything", "", "", "", "env-default"},
		{"whitespace explicit ignored", "   ", "", "", "env-default"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Resolve(tc.explicit, tc.query, tc.host); got != tc.want {
				t.Fatalf("Resolve(%q, %q, %q) = %q, want %q", tc.explicit, tc.query, tc.host, got, tc.want)
			}
		})
	}
}

func TestTenantResolver_HardFallback(t *testing.T) {
	r := TenantResolver{}
	if got := r.Resolve("", "", ""); got != FallbackTenant {
		t.Fatalf("Resolve = %q, want %q", got, FallbackTenant)
	}
	// The result is never empty, whatever the inputs.
	if got := r.Resolve("  ", " ", "nonsense"); got == "" {
		t.Fatal("Resolve returned empty tenant")
	}
}

func TestTenantResolver_CustomMarker(t *testing.T) {
	r := TenantResolver{HostMarker: "workers.dev"}
	if got := r.Resolve("", "", "hash.acme.workers.dev"); got != "acme" {
		t.Fatalf("Resolve = %q, want acme", got)
	}
	// The default marker no longer applies.
	if got := r.Resolve("", "", "hash.acme.pages.dev"); got != FallbackTenant {
		t.Fatalf("Resolve = %q, want fallback", got)
	}
}

func TestTenantResolver_MarkerItselfIsNotASlug(t *testing.T) {
	r := TenantResolver{Default: "fallback"}
	if got := r.Resolve("", "", "pages.dev"); got != "fallback" {
		t.Fatalf("Resolve = %q, want fallback", got)
	}
}
