package guard

import (
	"strings"
	"sync"
)

const (
	HomePath     = "/"
	LoginPath    = "/login"
	RegisterPath = "/register"
	ProductsPath = "/products"
)

// publicPages are viewable without a session.
var publicPages = []string{HomePath, ProductsPath, LoginPath, RegisterPath}

// IsPublicPage reports whether path is a page anonymous visitors may stay
// on: the home page, the catalog and product detail pages, login and
// register.
func IsPublicPage(path string) bool {
	for _, p := range publicPages {
		if path == p {
			return true
		}
	}
	return strings.HasPrefix(path, ProductsPath+"/")
}

// IsLoginPage reports whether path is (a sub-page of) the login entry point.
func IsLoginPage(path string) bool {
	return strings.Contains(path, LoginPath)
}

// Navigator is the page the user is looking at.
type Navigator interface {
	CurrentPath() string
	Redirect(path string)
}

// Location is a concurrency-safe Navigator that records every redirect.
type Location struct {
	mu        sync.Mutex
	path      string
	redirects []string
	onChange  func(from, to string)
}

var _ Navigator = (*Location)(nil)

// NewLocation starts at path. onChange, if non-nil, is called after every
// Redirect.
func NewLocation(path string, onChange func(from, to string)) *Location {
	return &Location{path: path, onChange: onChange}
}

func (l *Location) CurrentPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Visit moves to path without recording a redirect.
func (l *Location) Visit(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.path = path
}

func (l *Location) Redirect(path string) {
	l.mu.Lock()
	from := l.path
	l.path = path
	l.redirects = append(l.redirects, path)
	onChange := l.onChange
	l.mu.Unlock()

	if onChange != nil {
		onChange(from, path)
	}
}

// Redirects returns the forced navigations so far, oldest first.
func (l *Location) Redirects() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.redirects...)
}
