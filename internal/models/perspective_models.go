package models

// PerspectiveAttributes are the toxicity attributes requested for every
// scored comment, in the order they appear in reports.
var PerspectiveAttributes = []string{
	"TOXICITY",
	"SEVERE_TOXICITY",
	"INSULT",
	"PROFANITY",
	"IDENTITY_ATTACK",
}

type (
	PerspectiveRequest struct {
		Comment             PerspectiveComment  `json:"comment"`
		Languages           []string            `json:"languages"`
		RequestedAttributes map[string]struct{} `json:"requestedAttributes"`
	}

	PerspectiveComment struct {
		Text string `json:"text"`
	}
)

type PerspectiveResponse struct {
	AttributeScores map[string]struct {
		SummaryScore struct {
			Value float64 `json:"value"`
		} `json:"summaryScore"`
	} `json:"attributeScores"`
}

// PerspectiveScores maps attribute name to summary score. A nil value means
// the API response omitted that attribute.
type PerspectiveScores map[string]*float64

// ScoredOutput is one automated scoring result. Never mutated after
// creation; re-scoring appends a new entry.
type ScoredOutput struct {
	Comment           string            `json:"comment"`
	Lang              string            `json:"lang"`
	PerspectiveScores PerspectiveScores `json:"perspective_scores"`
	Model             string            `json:"model,omitempty"`
}

// HumanScored is one human annotation on the 0-5 scale, per attribute.
type HumanScored struct {
	Comment string         `json:"comment"`
	Scores  map[string]int `json:"scores"`
	Model   string         `json:"model,omitempty"`
}
