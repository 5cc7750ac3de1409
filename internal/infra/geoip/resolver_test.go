package geoip

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestOpenWithoutPathDisablesLookups(t *testing.T) {
	r, err := Open("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != nil {
		t.Fatalf("expected nil resolver, got %#v", r)
	}
	if _, err := r.CountryCode("8.8.8.8"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close on nil resolver: %v", err)
	}
}

func TestOpenMissingDatabase(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.mmdb")); err == nil {
		t.Fatal("expected error for missing database")
	}
}

func TestCountryCodeSkipsLocalAddresses(t *testing.T) {
	var r *Resolver
	for _, ip := range []string{"127.0.0.1", "10.1.2.3", "192.168.0.7", "::1", "0.0.0.0"} {
		code, err := r.CountryCode(ip)
		if err != nil || code != "" {
			t.Fatalf("CountryCode(%q) = %q, %v; want empty, nil", ip, code, err)
		}
	}
}

func TestCountryCodeRejectsGarbage(t *testing.T) {
	var r *Resolver
	if _, err := r.CountryCode("not-an-ip"); err == nil {
		t.Fatal("expected error for invalid ip")
	}
}
