package rpc

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// Application codes.
	CodeInvalidMnemonic     = -32001
	CodeWordlistUnavailable = -32002
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Param types ─────────────────────────────────────────────────────────

// GenerateParam is used by mnemonic_generate. Omitted fields default to
// 12 words in english.
type GenerateParam struct {
	WordCount *int   `json:"word_count,omitempty"`
	Language  string `json:"language,omitempty"`
}

// MnemonicParam is used by mnemonic_validate.
type MnemonicParam struct {
	Mnemonic string `json:"mnemonic"`
}

// DeriveParam is used by key_derive.
type DeriveParam struct {
	Mnemonic   string `json:"mnemonic"`
	Passphrase string `json:"passphrase"`
}

// KeyParam is used by key_inspect.
type KeyParam struct {
	Key string `json:"key"`
}

// SearchParam is used by words_search. Omitted max_results means
// DefaultMaxResults; omitted language means english.
type SearchParam struct {
	Query      string `json:"query"`
	Language   string `json:"language,omitempty"`
	MaxResults *int   `json:"max_results,omitempty"`
}

// DefaultMaxResults is the words_search limit when none is given.
const DefaultMaxResults = 10

// ── Result types ────────────────────────────────────────────────────────

// GenerateResult is returned by mnemonic_generate.
type GenerateResult struct {
	Mnemonic string `json:"mnemonic"`
}

// ValidateResult is returned by mnemonic_validate.
type ValidateResult struct {
	Valid     bool   `json:"valid"`
	Language  string `json:"language,omitempty"`
	WordCount int    `json:"word_count"`
}

// DeriveResult is returned by key_derive.
type DeriveResult struct {
	Key string `json:"key"`
}

// InspectResult is returned by key_inspect.
type InspectResult struct {
	Version     int    `json:"version"`
	Compressed  bool   `json:"compressed"`
	PublicKey   string `json:"public_key"`  // hex, 33 bytes
	Fingerprint string `json:"fingerprint"` // hex, 8 bytes
}

// SearchResult is returned by words_search.
type SearchResult struct {
	Words []string `json:"words"`
}

// LanguageInfo describes one supported language.
type LanguageInfo struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Words     int    `json:"words"`
}

// LanguagesResult is returned by lang_list.
type LanguagesResult struct {
	Languages []LanguageInfo `json:"languages"`
}
