package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewImageURLGuard はImageURLGuardの生成をテストする。
func TestNewImageURLGuard(t *testing.T) {
	guard := NewImageURLGuard()
	if guard == nil {
		t.Fatal("NewImageURLGuard() returned nil")
	}
}

// TestNewSafeClient はSSRF防止付きHTTPクライアントの生成をテストする。
func TestNewSafeClient(t *testing.T) {
	guard := NewImageURLGuard()
	client := guard.NewSafeClient(10 * time.Second)
	if client == nil {
		t.Fatal("NewSafeClient() returned nil")
	}
	if client.Timeout != 10*time.Second {
		t.Errorf("expected timeout %v, got %v", 10*time.Second, client.Timeout)
	}
}

// TestNewSafeClientHasTransport はSafeClientにカスタムTransportが設定されていることをテストする。
// safeurlはnet.DialerのControlフックでIPアドレス検証を行うため、
// Transportが標準のhttp.DefaultTransportではないことを確認する。
func TestNewSafeClientHasTransport(t *testing.T) {
	guard := NewImageURLGuard()
	client := guard.NewSafeClient(5 * time.Second)

	if client.Transport == nil {
		t.Fatal("expected custom Transport to be set, got nil")
	}
	if client.Transport == http.DefaultTransport {
		t.Fatal("expected custom Transport, got http.DefaultTransport")
	}
}

// TestNewSafeClientBlocksLoopback はSafeClientがループバックへのリクエストを
// ブロックすることをテストする。
// httptestサーバーは127.0.0.1で起動されるため、safeurlがブロックする。
func TestNewSafeClientBlocksLoopback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	guard := NewImageURLGuard()
	client := guard.NewSafeClient(5 * time.Second)

	resp, err := client.Get(ts.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected loopback request to be blocked")
	}
}

// TestValidateURL_Allowed 正当な外部URLが受理されることを検証する。
func TestValidateURL_Allowed(t *testing.T) {
	guard := NewImageURLGuard()

	urls := []string{
		"https://example.com/avatar.png",
		"http://img.example.com/a.jpg",
		"https://8.8.8.8/avatar.png",
	}
	for _, u := range urls {
		if err := guard.ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}
}

// TestValidateURL_Blocked 危険なURLが拒否されることを検証する。
func TestValidateURL_Blocked(t *testing.T) {
	guard := NewImageURLGuard()

	tests := []struct {
		name string
		url  string
	}{
		{name: "空URL", url: ""},
		{name: "不正なスキーム", url: "file:///etc/passwd"},
		{name: "javascriptスキーム", url: "javascript:alert(1)"},
		{name: "ホストなし", url: "https://"},
		{name: "localhost", url: "http://localhost/avatar.png"},
		{name: "localhost大文字", url: "http://LOCALHOST/avatar.png"},
		{name: "ループバックIP", url: "http://127.0.0.1/avatar.png"},
		{name: "プライベートIP 10系", url: "http://10.0.0.5/avatar.png"},
		{name: "プライベートIP 172系", url: "http://172.16.0.1/avatar.png"},
		{name: "プライベートIP 192系", url: "http://192.168.1.1/avatar.png"},
		{name: "クラウドメタデータIP", url: "http://169.254.169.254/latest/meta-data/"},
		{name: "IPv6ループバック", url: "http://[::1]/avatar.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := guard.ValidateURL(tt.url); err == nil {
				t.Errorf("ValidateURL(%q) = nil, want error", tt.url)
			}
		})
	}
}
