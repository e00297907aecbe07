package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-storefront-client/sessions"
	"github.com/rs/zerolog/log"
)

// CookiesKey holds the backend cookies next to the session snapshot.
const CookiesKey = "cookies"

type savedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path"`
	Expires time.Time `json:"expires,omitempty"`
}

func (c savedCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

// persistentJar is a cookie jar for a single backend whose cookies outlive
// the process. Every change is written back to storage with the cookie's
// path and expiry, so scoping survives a restart.
type persistentJar struct {
	mu      sync.Mutex
	jar     *cookiejar.Jar
	storage sessions.Storage
	base    *url.URL
	saved   map[string]savedCookie // name and path to cookie
	now     func() time.Time
}

var _ http.CookieJar = (*persistentJar)(nil)

func newPersistentJar(ctx context.Context, storage sessions.Storage, baseURL string) (*persistentJar, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &persistentJar{
		jar:     jar,
		storage: storage,
		base:    &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"},
		saved:   make(map[string]savedCookie),
		now:     time.Now,
	}

	data, found, err := storage.Get(ctx, CookiesKey)
	if err != nil {
		log.Warn().Err(err).Msg("Could not load cookies")
		return j, nil
	}
	if !found {
		return j, nil
	}
	var saved []savedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		log.Warn().Err(err).Msg("Ignoring unreadable cookies")
		return j, nil
	}
	now := j.now()
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		if c.expired(now) {
			continue
		}
		if c.Path == "" {
			c.Path = "/"
		}
		j.saved[cookieID(c.Name, c.Path)] = c
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires})
	}
	jar.SetCookies(j.base, cookies)
	return j, nil
}

func (j *persistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

func (j *persistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)

	now := j.now()
	for _, c := range cookies {
		path := c.Path
		if path == "" || path[0] != '/' {
			path = defaultPath(u.Path)
		}
		id := cookieID(c.Name, path)

		sc := savedCookie{Name: c.Name, Value: c.Value, Path: path, Expires: c.Expires}
		switch {
		case c.MaxAge < 0:
			delete(j.saved, id)
			continue
		case c.MaxAge > 0:
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if sc.expired(now) {
			delete(j.saved, id)
			continue
		}
		j.saved[id] = sc
	}
	j.persist(now)
}

// persist must be called with j.mu held.
func (j *persistentJar) persist(now time.Time) {
	ctx := context.Background()
	saved := make([]savedCookie, 0, len(j.saved))
	for id, c := range j.saved {
		if c.expired(now) {
			delete(j.saved, id)
			continue
		}
		saved = append(saved, c)
	}
	if len(saved) == 0 {
		if err := j.storage.Delete(ctx, CookiesKey); err != nil {
			log.Warn().Err(err).Msg("Could not delete cookies")
		}
		return
	}
	data, err := json.Marshal(saved)
	if err != nil {
		log.Warn().Err(err).Msg("Could not encode cookies")
		return
	}
	if err := j.storage.Set(ctx, CookiesKey, data); err != nil {
		log.Warn().Err(err).Msg("Could not save cookies")
	}
}

func cookieID(name, path string) string {
	return name + ";" + path
}

// defaultPath is the cookie default-path of a request path (RFC 6265 5.1.4).
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
