package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Klingon-tech/klingseed/config"
	klog "github.com/Klingon-tech/klingseed/internal/log"
	"github.com/Klingon-tech/klingseed/internal/masterkey"
)

const (
	m12      = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	fixedKey = "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn"
)

// fakeDeriver validates the mnemonic like the real pipeline but skips the
// expensive stretching step. Like the real deriver, it stops waiting when
// ctx ends while the work itself runs for the full delay and stays counted
// in active until it finishes.
type fakeDeriver struct {
	delay   time.Duration
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (d *fakeDeriver) DeriveMasterKeyContext(ctx context.Context, mnemonic, passphrase string) (string, error) {
	if _, err := masterkey.ParseMnemonic(mnemonic); err != nil {
		return "", err
	}

	n := d.active.Add(1)
	for {
		old := d.maxSeen.Load()
		if n <= old || d.maxSeen.CompareAndSwap(old, n) {
			break
		}
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer d.active.Add(-1)
		time.Sleep(d.delay)
	}()

	select {
	case <-done:
		return fixedKey, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// waitIdle blocks until no fake derivation is running.
func (d *fakeDeriver) waitIdle(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for d.active.Load() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("derivations still running: %d", d.active.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// testEnv holds all components for an RPC test.
type testEnv struct {
	server  *Server
	deriver *fakeDeriver
	url     string
}

func setupTestEnv(t *testing.T, rpcCfg ...config.RPCConfig) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	d := &fakeDeriver{}
	srv := New("127.0.0.1:0", d, rpcCfg...)
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		server:  srv,
		deriver: d,
		url:     fmt.Sprintf("http://%s/", srv.Addr()),
	}
}

func rpcCall(t *testing.T, url, method string, params interface{}) Response {
	t.Helper()
	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", method, err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rpcResp
}

// decodeResult re-marshals a generic result into a typed struct.
func decodeResult(t *testing.T, resp Response, target interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %d %s", resp.Error.Code, resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func intPtr(n int) *int { return &n }

// ── Mnemonic ────────────────────────────────────────────────────────────

func TestRPC_MnemonicGenerate(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "mnemonic_generate", GenerateParam{WordCount: intPtr(24), Language: "korean"})
	var result GenerateResult
	decodeResult(t, resp, &result)

	m, err := masterkey.ParseMnemonic(result.Mnemonic)
	if err != nil {
		t.Fatalf("generated mnemonic does not parse: %v", err)
	}
	if m.Language != "korean" || len(m.Words) != 24 {
		t.Errorf("got %s/%d words, want korean/24", m.Language, len(m.Words))
	}
}

func TestRPC_MnemonicGenerate_Defaults(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "mnemonic_generate", nil)
	var result GenerateResult
	decodeResult(t, resp, &result)

	if n := len(strings.Fields(result.Mnemonic)); n != 12 {
		t.Errorf("word count = %d, want 12", n)
	}
}

func TestRPC_MnemonicGenerate_Errors(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		params GenerateParam
		code   int
	}{
		{"bad count", GenerateParam{WordCount: intPtr(13)}, CodeInvalidParams},
		{"bad language", GenerateParam{Language: "klingon"}, CodeInvalidParams},
		{"portuguese", GenerateParam{Language: "portuguese"}, CodeWordlistUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := rpcCall(t, env.url, "mnemonic_generate", tt.params)
			if resp.Error == nil {
				t.Fatal("expected error")
			}
			if resp.Error.Code != tt.code {
				t.Errorf("error code = %d, want %d", resp.Error.Code, tt.code)
			}
		})
	}
}

func TestRPC_MnemonicValidate(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		mnemonic  string
		valid     bool
		language  string
		wordCount int
	}{
		{m12, true, "english", 12},
		{"  ABANDON abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about ", true, "english", 12},
		{"abandon abandon abandon", false, "", 3},
		{"", false, "", 0},
	}
	for _, tt := range tests {
		resp := rpcCall(t, env.url, "mnemonic_validate", MnemonicParam{Mnemonic: tt.mnemonic})
		var result ValidateResult
		decodeResult(t, resp, &result)

		if result.Valid != tt.valid || result.Language != tt.language || result.WordCount != tt.wordCount {
			t.Errorf("mnemonic_validate(%q) = %+v, want valid=%v language=%q word_count=%d",
				tt.mnemonic, result, tt.valid, tt.language, tt.wordCount)
		}
	}
}

// ── Keys ────────────────────────────────────────────────────────────────

func TestRPC_KeyDerive(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "key_derive", DeriveParam{Mnemonic: m12, Passphrase: "TREZOR"})
	var result DeriveResult
	decodeResult(t, resp, &result)

	if result.Key != fixedKey {
		t.Errorf("key = %s, want %s", result.Key, fixedKey)
	}
}

func TestRPC_KeyDerive_InvalidMnemonic(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "key_derive", DeriveParam{Mnemonic: "abandon abandon abandon"})
	if resp.Error == nil {
		t.Fatal("expected error for invalid mnemonic")
	}
	if resp.Error.Code != CodeInvalidMnemonic {
		t.Errorf("error code = %d, want %d", resp.Error.Code, CodeInvalidMnemonic)
	}
}

func TestRPC_KeyDerive_MissingMnemonic(t *testing.T) {
	env := setupTestEnv(t)

	for _, m := range []string{"", "   ", "\t\n"} {
		resp := rpcCall(t, env.url, "key_derive", DeriveParam{Mnemonic: m})
		if resp.Error == nil || resp.Error.Code != CodeInvalidMnemonic {
			t.Fatalf("mnemonic %q: error = %+v, want code %d", m, resp.Error, CodeInvalidMnemonic)
		}
	}
	if got := env.deriver.maxSeen.Load(); got != 0 {
		t.Errorf("blank mnemonics reached the deriver %d times", got)
	}
}

func TestRPC_KeyDerive_Bounded(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{MaxDerive: 2})
	env.deriver.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := rpcCall(t, env.url, "key_derive", DeriveParam{Mnemonic: m12})
			if resp.Error != nil {
				t.Errorf("key_derive error: %s", resp.Error.Message)
			}
		}()
	}
	wg.Wait()

	if got := env.deriver.maxSeen.Load(); got > 2 {
		t.Errorf("concurrent derivations = %d, want <= 2", got)
	}
}

func TestRPC_KeyDerive_CanceledKeepsSlot(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{MaxDerive: 1})
	env.deriver.delay = 200 * time.Millisecond

	body, err := json.Marshal(Request{JSONRPC: "2.0", Method: "key_derive", Params: DeriveParam{Mnemonic: m12}, ID: 1})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, env.url, bytes.NewReader(body))
			if err != nil {
				t.Errorf("new request: %v", err)
				return
			}
			req.Header.Set("Content-Type", "application/json")
			if resp, err := http.DefaultClient.Do(req); err == nil {
				resp.Body.Close()
			}
		}()
		time.Sleep(30 * time.Millisecond)
	}
	wg.Wait()
	env.deriver.waitIdle(t)

	if got := env.deriver.maxSeen.Load(); got > 1 {
		t.Errorf("concurrent derivations = %d, want <= 1", got)
	}

	// The slot is free again once the abandoned work completes.
	resp := rpcCall(t, env.url, "key_derive", DeriveParam{Mnemonic: m12})
	var result DeriveResult
	decodeResult(t, resp, &result)
	if result.Key != fixedKey {
		t.Errorf("key = %s, want %s", result.Key, fixedKey)
	}
}

func TestRPC_KeyInspect(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "key_inspect", KeyParam{Key: fixedKey})
	var result InspectResult
	decodeResult(t, resp, &result)

	if result.Version != 0x80 || !result.Compressed {
		t.Errorf("version/compressed = %d/%v, want 128/true", result.Version, result.Compressed)
	}
	if result.PublicKey != "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798" {
		t.Errorf("public_key = %s", result.PublicKey)
	}
	if len(result.Fingerprint) != 16 {
		t.Errorf("fingerprint length = %d, want 16 hex chars", len(result.Fingerprint))
	}
}

func TestRPC_KeyInspect_Invalid(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "key_inspect", KeyParam{Key: "5HpHagT65TZzG1PH3CSu63k8DbpvD8s5ip4nEB3kEsreAnchuDf"})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Fatalf("error = %+v, want code %d", resp.Error, CodeInvalidParams)
	}
}

// ── Wordlists ───────────────────────────────────────────────────────────

func TestRPC_WordsSearch(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "words_search", SearchParam{Query: "aband", Language: "english", MaxResults: intPtr(3)})
	var result SearchResult
	decodeResult(t, resp, &result)

	want := []string{"abandon", "bind", "brand"}
	if strings.Join(result.Words, ",") != strings.Join(want, ",") {
		t.Errorf("words = %v, want %v", result.Words, want)
	}
}

func TestRPC_WordsSearch_DefaultLimit(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "words_search", SearchParam{Query: "ab"})
	var result SearchResult
	decodeResult(t, resp, &result)

	if len(result.Words) != DefaultMaxResults {
		t.Errorf("len(words) = %d, want %d", len(result.Words), DefaultMaxResults)
	}
}

func TestRPC_WordsSearch_Errors(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		params SearchParam
		code   int
	}{
		{"empty query", SearchParam{Query: " "}, CodeInvalidParams},
		{"negative limit", SearchParam{Query: "ab", MaxResults: intPtr(-1)}, CodeInvalidParams},
		{"bad language", SearchParam{Query: "ab", Language: "elvish"}, CodeInvalidParams},
		{"portuguese", SearchParam{Query: "ab", Language: "portuguese"}, CodeWordlistUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := rpcCall(t, env.url, "words_search", tt.params)
			if resp.Error == nil {
				t.Fatal("expected error")
			}
			if resp.Error.Code != tt.code {
				t.Errorf("error code = %d, want %d", resp.Error.Code, tt.code)
			}
		})
	}
}

func TestRPC_LangList(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "lang_list", nil)
	var result LanguagesResult
	decodeResult(t, resp, &result)

	if len(result.Languages) != 8 {
		t.Fatalf("len(languages) = %d, want 8", len(result.Languages))
	}
	for _, l := range result.Languages {
		wantAvailable := l.Name != "portuguese"
		if l.Available != wantAvailable {
			t.Errorf("%s available = %v, want %v", l.Name, l.Available, wantAvailable)
		}
		if l.Available && l.Words != 2048 {
			t.Errorf("%s words = %d, want 2048", l.Name, l.Words)
		}
	}
}

// ── Protocol ────────────────────────────────────────────────────────────

func TestRPC_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "nonexistent_method", nil)
	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != CodeMethodNotFound {
		t.Errorf("error code = %d, want %d", resp.Error.Code, CodeMethodNotFound)
	}
}

func TestRPC_InvalidParams(t *testing.T) {
	env := setupTestEnv(t)

	// key_derive requires params.
	resp := rpcCall(t, env.url, "key_derive", nil)
	if resp.Error == nil {
		t.Fatal("expected error for missing params")
	}
	if resp.Error.Code != CodeInvalidParams {
		t.Errorf("error code = %d, want %d", resp.Error.Code, CodeInvalidParams)
	}
}

func TestRPC_InvalidJSON(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Post(env.url, "application/json", bytes.NewReader([]byte("not json")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)

	if rpcResp.Error == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if rpcResp.Error.Code != CodeParseError {
		t.Errorf("error code = %d, want %d", rpcResp.Error.Code, CodeParseError)
	}
}

func TestRPC_WrongVersion(t *testing.T) {
	env := setupTestEnv(t)

	body := []byte(`{"jsonrpc":"1.0","method":"lang_list","id":7}`)
	resp, err := http.Post(env.url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)
	if rpcResp.Error == nil || rpcResp.Error.Code != CodeInvalidRequest {
		t.Errorf("error = %+v, want code %d", rpcResp.Error, CodeInvalidRequest)
	}
}

func TestRPC_GetMethodNotAllowed(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Get(env.url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)

	if rpcResp.Error == nil {
		t.Fatal("expected error for GET request")
	}
	if rpcResp.Error.Code != CodeInvalidRequest {
		t.Errorf("error code = %d, want %d", rpcResp.Error.Code, CodeInvalidRequest)
	}
}

func TestRPC_BodySizeLimit(t *testing.T) {
	env := setupTestEnv(t)

	bigPayload := bytes.Repeat([]byte{'A'}, (1<<20)+1024)
	resp, err := http.Post(env.url, "application/json", bytes.NewReader(bigPayload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)

	if rpcResp.Error == nil {
		t.Fatal("expected error for oversized request body")
	}
	if rpcResp.Error.Code != CodeInvalidRequest {
		t.Errorf("error code = %d, want %d", rpcResp.Error.Code, CodeInvalidRequest)
	}
}

// --- IP Filtering ---

func TestRPC_IPFilter_Allowed(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{AllowedIPs: []string{"127.0.0.1"}})

	resp := rpcCall(t, env.url, "lang_list", nil)
	if resp.Error != nil {
		t.Errorf("expected success for 127.0.0.1, got error: %s", resp.Error.Message)
	}
}

func TestRPC_IPFilter_Blocked(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{AllowedIPs: []string{"10.0.0.0/8"}})

	// Request comes from 127.0.0.1 → should be blocked.
	body, _ := json.Marshal(Request{JSONRPC: "2.0", Method: "lang_list", ID: 1})
	resp, err := http.Post(env.url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}

// --- CORS ---

func TestRPC_CORS(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{"wildcard", []string{"*"}, "http://example.com", "*"},
		{"specific match", []string{"http://myapp.com"}, "http://myapp.com", "http://myapp.com"},
		{"specific mismatch", []string{"http://myapp.com"}, "http://evil.com", ""},
		{"disabled", nil, "http://example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t, config.RPCConfig{CORSOrigins: tt.origins})

			body, _ := json.Marshal(Request{JSONRPC: "2.0", Method: "lang_list", ID: 1})
			httpReq, _ := http.NewRequest("POST", env.url, bytes.NewReader(body))
			httpReq.Header.Set("Content-Type", "application/json")
			httpReq.Header.Set("Origin", tt.origin)

			resp, err := http.DefaultClient.Do(httpReq)
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			defer resp.Body.Close()

			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("CORS origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRPC_CORS_Preflight(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{CORSOrigins: []string{"*"}})

	httpReq, _ := http.NewRequest("OPTIONS", env.url, nil)
	httpReq.Header.Set("Origin", "http://example.com")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Error("preflight should have Allow-Methods header")
	}
}
