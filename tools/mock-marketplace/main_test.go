package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func testServer() *server {
	return &server{
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		nextID:   1,
		listings: make(map[int]mockListing),
	}
}

func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "user@example.com"})
	return req
}

func TestLogin_SetsSessionAndRedirects(t *testing.T) {
	s := testServer()

	form := url.Values{"email": {"user@example.com"}, "password": {"secret"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	s.login(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/mijn-marktplaats" {
		t.Errorf("location=%q, want /mijn-marktplaats", loc)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessionCookie {
		t.Fatalf("expected a %s cookie, got %v", sessionCookie, cookies)
	}
}

func TestLogin_RejectsMissingCredentials(t *testing.T) {
	s := testServer()

	form := url.Values{"email": {"user@example.com"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	s.login(w, req)

	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("location=%q, want /login", loc)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("expected no session cookie")
	}
}

func TestAccount_RequiresSession(t *testing.T) {
	s := testServer()

	w := httptest.NewRecorder()
	s.account(w, httptest.NewRequest(http.MethodGet, "/mijn-marktplaats", http.NoBody))
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("location=%q, want /login", loc)
	}

	w = httptest.NewRecorder()
	s.account(w, withSession(httptest.NewRequest(http.MethodGet, "/mijn-marktplaats", http.NoBody)))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "user@example.com") {
		t.Error("expected account page to show the logged in email")
	}
}

func TestAdForm_ContainsPosterSelectors(t *testing.T) {
	s := testServer()

	w := httptest.NewRecorder()
	s.adForm(w, withSession(httptest.NewRequest(http.MethodGet, "/plaatsadvertentie", http.NoBody)))

	body := w.Body.String()
	for _, selector := range []string{
		`name="title"`,
		`name="description"`,
		`name="price"`,
		`name="condition"`,
		`name="postalCode"`,
		`type="file"`,
		`data-testid="publish"`,
		`for="delivery-method-pickup"`,
		`role="option"`,
	} {
		if !strings.Contains(body, selector) {
			t.Errorf("ad form missing %s", selector)
		}
	}
}

func TestPlaceAd_StoresListingAndConfirms(t *testing.T) {
	s := testServer()

	form := url.Values{
		"title":       {"Nike Air Max"},
		"price":       {"45.50"},
		"description": {"Barely worn"},
	}
	req := withSession(httptest.NewRequest(
		http.MethodPost, "/plaatsadvertentie", strings.NewReader(form.Encode()),
	))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	s.placeAd(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, `data-testid="listing-confirmation"`) {
		t.Error("expected confirmation container")
	}
	if !strings.Contains(body, `href="/a/1"`) {
		t.Error("expected link to the created listing")
	}

	// The created listing is served back.
	req = httptest.NewRequest(http.MethodGet, "/a/1", http.NoBody)
	req.SetPathValue("id", "1")
	w = httptest.NewRecorder()
	s.listing(w, req)
	if !strings.Contains(w.Body.String(), "Nike Air Max") {
		t.Error("expected listing page to show the title")
	}
}
