package translate

// Request is one text to translate.
type Request struct {
	Text   string
	Source string // ISO 639-1, e.g. "en"
	Target string
}

// Result is a translated text and whether it came from the cache.
type Result struct {
	Text   string `json:"translated_text"`
	Cached bool   `json:"cached"`
}

// apiRequest is the LibreTranslate-compatible request body.
type apiRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type apiResponse struct {
	TranslatedText string `json:"translatedText"`
}

type apiError struct {
	Error string `json:"error"`
}
