package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		xLoc   string
		want   string
	}{
		{"plain english", "en-US,en;q=0.9", "", "en"},
		{"spanish", "es-MX", "", "es"},
		{"indonesian", "id-ID,id;q=0.8", "", "id"},
		{"unsupported falls back to match", "fr-FR", "", "en"},
		{"x-locale overrides", "es-MX", "id", "id"},
		{"empty uses default", "", "", "en"},
		{"garbage uses default", ";;;", "", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/wells", nil)
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			if tt.xLoc != "" {
				r.Header.Set("X-Locale", tt.xLoc)
			}
			if got := detectLocale(r, "en"); got != tt.want {
				t.Fatalf("detectLocale = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	lookup := func(ip string) (string, error) {
		if ip == "203.0.113.7" {
			return "ke", nil
		}
		return "", nil
	}

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"proxy header wins", map[string]string{"CF-IPCountry": "tz", "Accept-Language": "en-US"}, "203.0.113.7:1234", "TZ"},
		{"accept-language region", map[string]string{"Accept-Language": "es-MX"}, "198.51.100.1:1234", "MX"},
		{"geoip fallback", map[string]string{}, "203.0.113.7:1234", "KE"},
		{"unknown", map[string]string{}, "198.51.100.1:1234", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/wells", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ResolveCountry(r, lookup); got != tt.want {
				t.Fatalf("ResolveCountry = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocaleMiddlewareStoresContextValues(t *testing.T) {
	var locale, country string
	handler := Locale("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/wells", nil)
	req.Header.Set("Accept-Language", "es-MX")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if locale != "es" {
		t.Fatalf("locale = %q, want es", locale)
	}
	if country != "MX" {
		t.Fatalf("country = %q, want MX", country)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/wells", nil)
	r.RemoteAddr = "10.0.0.1:4000"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := ClientIP(r); got != "203.0.113.7" {
		t.Fatalf("ClientIP = %q", got)
	}

	r.Header.Del("X-Forwarded-For")
	if got := ClientIP(r); got != "10.0.0.1" {
		t.Fatalf("ClientIP = %q", got)
	}
}
