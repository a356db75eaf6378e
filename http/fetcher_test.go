package http_test

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/fcoelho/arremate"
	"github.com/fcoelho/arremate/http"
	"github.com/fcoelho/arremate/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("ReturnsFullPage", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html><body>ok</body></html>"))
		}))
		defer srv.Close()

		f := http.NewFetcher()
		defer f.Close()

		page, err := f.Fetch(context.Background(), arremate.Request{
			URL:  srv.URL,
			Meta: arremate.RequestMeta{Domain: "x.com", Depth: 1},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, page.StatusCode)
		assert.Contains(t, page.Body, "ok")
		assert.True(t, page.IsText())
		assert.Equal(t, 1, page.Meta.Depth, "request metadata passes through untouched")
	})

	t.Run("NonOKStatusIsAPageNotAnError", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			w.WriteHeader(nethttp.StatusForbidden)
		}))
		defer srv.Close()

		f := http.NewFetcher()
		defer f.Close()

		page, err := f.Fetch(context.Background(), arremate.Request{URL: srv.URL})
		require.NoError(t, err)
		assert.Equal(t, 403, page.StatusCode)
	})

	t.Run("ManualCookiesAttached", func(t *testing.T) {
		t.Parallel()

		var gotCookie string
		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			if c, err := r.Cookie("cf_clearance"); err == nil {
				gotCookie = c.Value
			}
		}))
		defer srv.Close()

		store := &mock.CookieStore{
			LoadCookiesFn: func(domain string) ([]arremate.Cookie, bool, error) {
				require.Equal(t, "x.com", domain)
				return []arremate.Cookie{{Name: "cf_clearance", Value: "abc"}}, true, nil
			},
		}

		f := http.NewFetcher(http.WithCookieStore(store))
		defer f.Close()

		_, err := f.Fetch(context.Background(), arremate.Request{
			URL:  srv.URL,
			Meta: arremate.RequestMeta{Domain: "x.com", ManualCookies: true},
		})
		require.NoError(t, err)
		assert.Equal(t, "abc", gotCookie)
	})

	t.Run("NoCookiesWithoutManualFlag", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			assert.Empty(t, r.Cookies())
		}))
		defer srv.Close()

		store := &mock.CookieStore{
			LoadCookiesFn: func(domain string) ([]arremate.Cookie, bool, error) {
				return []arremate.Cookie{{Name: "session", Value: "v"}}, true, nil
			},
		}

		f := http.NewFetcher(http.WithCookieStore(store))
		defer f.Close()

		_, err := f.Fetch(context.Background(), arremate.Request{
			URL:  srv.URL,
			Meta: arremate.RequestMeta{Domain: "x.com"},
		})
		require.NoError(t, err)
	})

	t.Run("TransportErrorIsUnavailable", func(t *testing.T) {
		t.Parallel()

		f := http.NewFetcher()
		defer f.Close()

		_, err := f.Fetch(context.Background(), arremate.Request{URL: "http://127.0.0.1:1/nada"})
		require.Error(t, err)
		assert.Equal(t, arremate.EUNAVAILABLE, arremate.ErrorCode(err))
	})
}
