package models

type (
	GeminiRequest struct {
		Contents         []GeminiContent         `json:"contents"`
		GenerationConfig *GeminiGenerationConfig `json:"generationConfig,omitempty"`
	}

	GeminiContent struct {
		Parts []GeminiPart `json:"parts"`
	}

	GeminiPart struct {
		Text string `json:"text"`
	}

	GeminiGenerationConfig struct {
		ResponseMimeType string `json:"response_mime_type,omitempty"`
	}
)

type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []GeminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Text returns the first candidate's first part, which is where the
// generateContent endpoint places JSON-mode output.
func (r GeminiResponse) Text() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Parts[0].Text
}
