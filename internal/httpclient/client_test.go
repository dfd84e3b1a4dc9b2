package httpclient

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		private bool
		wantErr bool
	}{
		{"https://example.com/message.yaml", false, false},
		{"http://example.com:8080/a.toml", false, false},
		{"ftp://example.com/a.yaml", false, true},
		{"https://user:pw@example.com/a.yaml", false, true},
		{"https:///a.yaml", false, true},
		{"http://localhost/a.yaml", false, true},
		{"http://api.localhost/a.yaml", false, true},
		{"http://127.0.0.1/a.yaml", false, true},
		{"http://10.1.2.3/a.yaml", false, true},
		{"http://[::1]/a.yaml", false, true},
		{"http://169.254.169.254/latest", false, true},
		{"http://localhost/a.yaml", true, false},
		{"http://10.1.2.3/a.yaml", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			require.NoError(t, err)
			err = ValidateURL(u, tt.private)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsBlocked(t *testing.T) {
	for addr, want := range map[string]bool{
		"8.8.8.8":          false,
		"2606:4700::1111":  false,
		"127.0.0.1":        true,
		"192.168.1.10":     true,
		"172.20.0.1":       true,
		"0.1.2.3":          true,
		"224.0.0.1":        true,
		"255.255.255.255":  true,
		"::ffff:127.0.0.1": true,
		"fe80::1":          true,
		"fc00::1":          true,
		"::":               true,
	} {
		assert.Equal(t, want, IsBlocked(netip.MustParseAddr(addr)), addr)
	}
}

func TestClientRefusesLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("name: Message\n"))
	}))
	defer srv.Close()

	_, err := New(Options{Timeout: 5 * time.Second}).Get(srv.URL)
	assert.Error(t, err)

	resp, err := New(Options{Timeout: 5 * time.Second, AllowPrivate: true}).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
