//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts_NoAuth(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestListProducts(t *testing.T) {
	resp := doGetWithAuth(t, "/api/products", testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != seededCatalog {
		t.Fatalf("expected %d products, got %d", seededCatalog, len(products))
	}

	byID := make(map[string]productResponse, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	organizer, ok := byID[organizerID]
	if !ok {
		t.Fatalf("product %s missing from list", organizerID)
	}
	if organizer.Name != "Walnut Desk Organizer" {
		t.Errorf("name: got %q", organizer.Name)
	}
	if organizer.Price != 29.9 {
		t.Errorf("price: got %v, want 29.9", organizer.Price)
	}

	giftCard := byID[giftCardID]
	if !giftCard.UnlimitedStock {
		t.Error("gift card should have unlimited stock")
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGetWithAuth(t, "/api/products/"+bookmarkID, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if p.ID != bookmarkID {
		t.Errorf("id: got %q", p.ID)
	}
	if p.SKU != "BBM-004" {
		t.Errorf("sku: got %q", p.SKU)
	}
	if p.Price != 9.5 {
		t.Errorf("price: got %v, want 9.5", p.Price)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGetWithAuth(t, "/api/products/99999999-9999-9999-9999-999999999999", testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetProduct_InvalidID(t *testing.T) {
	resp := doGetWithAuth(t, "/api/products/not-a-uuid", testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
