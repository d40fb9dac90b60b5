// Package main implements a mock marketplace server for local development.
// It serves a Marktplaats-style login and listing flow with the same
// selectors the posters drive, so the full browser pipeline can be smoke
// tested without touching a real marketplace. Point a poster at it with
// CROSSLISTER_MARKTPLAATS_URL=http://localhost:8089.
package main

import (
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

const sessionCookie = "mock_session"

var loginPage = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html><body>
<h1>Inloggen</h1>
<form method="POST" action="/login">
  <input id="email" name="email" type="email">
  <input id="password" name="password" type="password">
  <button type="submit">Inloggen</button>
</form>
</body></html>`))

var accountPage = template.Must(template.New("account").Parse(`<!DOCTYPE html>
<html><body>
<h1>Mijn Marktplaats</h1>
<p>Ingelogd als {{.Email}}</p>
</body></html>`))

var adFormPage = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html><body>
<button aria-label="Akkoord">Akkoord</button>
<form method="POST" action="/plaatsadvertentie" enctype="multipart/form-data">
  <input name="title" type="text">
  <button data-testid="category-selector" type="button">Kies categorie</button>
  <input data-testid="category-search" type="text">
  <input type="file" name="images" multiple>
  <textarea name="description"></textarea>
  <input name="price" type="text">
  <button name="condition" type="button">Conditie</button>
  <ul>
    <li role="option">Nieuw</li>
    <li role="option">Zo goed als nieuw</li>
    <li role="option">Gebruikt</li>
  </ul>
  <input name="postalCode" type="text">
  <input id="delivery-method-pickup" type="checkbox">
  <label for="delivery-method-pickup">Ophalen</label>
  <button type="submit" data-testid="publish">Plaats je advertentie</button>
</form>
</body></html>`))

var confirmationPage = template.Must(template.New("confirm").Parse(`<!DOCTYPE html>
<html><body>
<div data-testid="listing-confirmation">
  <p>Je advertentie staat online!</p>
  <a href="/a/{{.ID}}">Bekijk je advertentie</a>
</div>
</body></html>`))

var listingPage = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html><body>
<h1>{{.Title}}</h1>
<p>{{.Price}}</p>
<p>{{.Description}}</p>
</body></html>`))

// mockListing is one ad accepted by the mock server.
type mockListing struct {
	ID          int
	Title       string
	Price       string
	Description string
}

type server struct {
	log *slog.Logger

	mu       sync.Mutex
	nextID   int
	listings map[int]mockListing
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := &server{
		log:      logger,
		nextID:   1,
		listings: make(map[int]mockListing),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.home)
	mux.HandleFunc("GET /login", s.loginForm)
	mux.HandleFunc("POST /login", s.login)
	mux.HandleFunc("GET /mijn-marktplaats", s.account)
	mux.HandleFunc("GET /plaatsadvertentie", s.adForm)
	mux.HandleFunc("POST /plaatsadvertentie", s.placeAd)
	mux.HandleFunc("GET /a/{id}", s.listing)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock marketplace", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func loggedIn(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	return err == nil && c.Value != ""
}

func (s *server) home(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintln(w, "<html><body><h1>Mock Marktplaats</h1></body></html>")
}

func (s *server) loginForm(w http.ResponseWriter, _ *http.Request) {
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	loginPage.Execute(w, nil)
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	if email == "" || r.FormValue("password") == "" {
		s.log.Warn("login rejected, missing credentials")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:  sessionCookie,
		Value: email,
		Path:  "/",
	})
	s.log.Info("login accepted", "email", email)
	http.Redirect(w, r, "/mijn-marktplaats", http.StatusSeeOther)
}

func (s *server) account(w http.ResponseWriter, r *http.Request) {
	if !loggedIn(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	c, _ := r.Cookie(sessionCookie)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	accountPage.Execute(w, map[string]string{"Email": c.Value})
}

func (s *server) adForm(w http.ResponseWriter, r *http.Request) {
	if !loggedIn(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	adFormPage.Execute(w, nil)
}

func (s *server) placeAd(w http.ResponseWriter, r *http.Request) {
	if !loggedIn(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	// Multipart when images are attached, urlencoded otherwise.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listings[id] = mockListing{
		ID:          id,
		Title:       r.FormValue("title"),
		Price:       r.FormValue("price"),
		Description: r.FormValue("description"),
	}
	s.mu.Unlock()

	s.log.Info("listing placed", "id", id, "title", r.FormValue("title"))
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	confirmationPage.Execute(w, map[string]int{"ID": id})
}

func (s *server) listing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	l, ok := s.listings[id]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	listingPage.Execute(w, l)
}
