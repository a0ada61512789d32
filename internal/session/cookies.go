package session

import "net/http"

const (
	accessCookie  = "zeyin-access-token"
	refreshCookie = "zeyin-refresh-token"

	refreshCookieMaxAge = 30 * 24 * 60 * 60
)

// CookieJar buffers cookie writes for one request/response pair. Reads come
// from the inbound request (shadowed by any buffered write, so a rotation is
// visible to later reads); writes never mutate the request and are applied to
// the response explicitly via Apply.
type CookieJar struct {
	req     *http.Request
	pending []*http.Cookie
}

func NewCookieJar(r *http.Request) *CookieJar {
	return &CookieJar{req: r}
}

func (j *CookieJar) Get(name string) string {
	for i := len(j.pending) - 1; i >= 0; i-- {
		if j.pending[i].Name == name {
			if j.pending[i].MaxAge < 0 {
				return ""
			}
			return j.pending[i].Value
		}
	}
	c, err := j.req.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (j *CookieJar) Set(name, value string, maxAge int) {
	j.pending = append(j.pending, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (j *CookieJar) Clear(name string) {
	j.Set(name, "", -1)
}

// Apply writes every buffered cookie onto the response headers.
func (j *CookieJar) Apply(w http.ResponseWriter) {
	for _, c := range j.pending {
		http.SetCookie(w, c)
	}
}

// Pending reports how many cookie writes are buffered.
func (j *CookieJar) Pending() int { return len(j.pending) }
