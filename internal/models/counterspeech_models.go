package models

// Counterspeech is one generated reply. Entries are append-only: re-running a
// model over a comment produces a new entry rather than overwriting.
type Counterspeech struct {
	Comment              string `json:"comment"`
	Language             string `json:"language"`
	CounterspeechEnglish string `json:"counterspeech_english"`
	Model                string `json:"model,omitempty"`
}

type (
	HFGenerationRequest struct {
		Inputs     string             `json:"inputs"`
		Parameters HFGenerationParams `json:"parameters"`
	}

	HFGenerationParams struct {
		MaxNewTokens   int     `json:"max_new_tokens"`
		Temperature    float64 `json:"temperature"`
		TopP           float64 `json:"top_p"`
		DoSample       bool    `json:"do_sample"`
		ReturnFullText bool    `json:"return_full_text"`
	}
)

type HFGenerationResponse []struct {
	GeneratedText string `json:"generated_text"`
}
