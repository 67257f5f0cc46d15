package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures cross-origin request handling.
type CORSConfig struct {
	// AllowOrigins lists origins permitted to call the API. Empty or a
	// single "*" allows every origin.
	AllowOrigins []string

	// AllowMethods defaults to "GET, POST, PUT, DELETE, OPTIONS".
	AllowMethods []string

	// AllowHeaders lists permitted request headers. When empty the
	// preflight's Access-Control-Request-Headers is echoed back.
	AllowHeaders []string

	// ExposeHeaders lists response headers readable by browser scripts.
	ExposeHeaders []string

	// AllowCredentials permits cookies and Authorization headers. The
	// wildcard origin is never sent when credentials are allowed; the
	// matching origin is echoed instead.
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds. Zero omits the
	// header, negative sends "0".
	MaxAge int
}

// originSet matches request origins case-insensitively while remembering
// the configured casing for the response header.
type originSet struct {
	wildcard bool
	byLower  map[string]string
}

func newOriginSet(origins []string, credentials bool) originSet {
	s := originSet{
		wildcard: len(origins) == 0,
		byLower:  make(map[string]string, len(origins)),
	}
	for _, o := range origins {
		if o == "*" {
			s.wildcard = true
			continue
		}
		s.byLower[strings.ToLower(o)] = o
	}
	// Credential responses must name the origin, never "*".
	if credentials {
		s.wildcard = false
	}
	return s
}

// match returns the Access-Control-Allow-Origin value for origin, or ""
// when the origin is not permitted.
func (s originSet) match(origin string) string {
	if s.wildcard {
		return "*"
	}
	return s.byLower[strings.ToLower(origin)]
}

// CORS handles preflight and actual cross-origin requests. Vary headers
// are set whenever the response depends on the request origin, so shared
// caches do not serve one origin's response to another.
func CORS(cfg CORSConfig) Middleware {
	origins := newOriginSet(cfg.AllowOrigins, cfg.AllowCredentials)

	methods := "GET, POST, PUT, DELETE, OPTIONS"
	if len(cfg.AllowMethods) > 0 {
		methods = strings.Join(cfg.AllowMethods, ", ")
	}
	headers := strings.Join(cfg.AllowHeaders, ", ")
	expose := strings.Join(cfg.ExposeHeaders, ", ")

	var maxAge string
	switch {
	case cfg.MaxAge > 0:
		maxAge = strconv.Itoa(cfg.MaxAge)
	case cfg.MaxAge < 0:
		maxAge = "0"
	}

	preflight := func(w http.ResponseWriter, r *http.Request, allow string) {
		hdr := w.Header()
		hdr.Add("Vary", "Origin")
		hdr.Add("Vary", "Access-Control-Request-Method")
		hdr.Add("Vary", "Access-Control-Request-Headers")

		if allow != "" {
			hdr.Set("Access-Control-Allow-Origin", allow)
			hdr.Set("Access-Control-Allow-Methods", methods)
			switch {
			case headers != "":
				hdr.Set("Access-Control-Allow-Headers", headers)
			default:
				if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
					hdr.Set("Access-Control-Allow-Headers", req)
				}
			}
			if cfg.AllowCredentials {
				hdr.Set("Access-Control-Allow-Credentials", "true")
			}
			if maxAge != "" {
				hdr.Set("Access-Control-Max-Age", maxAge)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				if !origins.wildcard {
					w.Header().Add("Vary", "Origin")
				}
				next.ServeHTTP(w, r)
				return
			}

			allow := origins.match(origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				preflight(w, r, allow)
				return
			}

			if !origins.wildcard {
				w.Header().Add("Vary", "Origin")
			}
			if allow != "" {
				w.Header().Set("Access-Control-Allow-Origin", allow)
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				if expose != "" {
					w.Header().Set("Access-Control-Expose-Headers", expose)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
