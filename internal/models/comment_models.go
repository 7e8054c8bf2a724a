package models

// Language classification buckets produced by the cleaning stage.
const (
	LangRomHindi = "rom_hindi"
	LangEnglish  = "english"
	LangOther    = "other"
)

// CleanedBatchItem is one element of the cleaner's model response. The
// response array must be the same length and order as the request batch.
type CleanedBatchItem struct {
	Classification string `json:"classification"`
	CleanedText    string `json:"cleaned_text"`
}

// CleanedComments is the cumulative cleaned store, keyed by language bucket.
// Merging into it deduplicates on exact text.
type CleanedComments struct {
	RomHindi []string `json:"rom_hindi"`
	English  []string `json:"english"`
	Other    []string `json:"other"`
}

// Bucket returns the slice for a classification, defaulting to Other for
// anything the model invents outside the three known buckets.
func (c *CleanedComments) Bucket(classification string) *[]string {
	switch classification {
	case LangRomHindi:
		return &c.RomHindi
	case LangEnglish:
		return &c.English
	default:
		return &c.Other
	}
}

// All returns every stored comment across buckets, in bucket order.
func (c *CleanedComments) All() []string {
	out := make([]string, 0, len(c.RomHindi)+len(c.English)+len(c.Other))
	out = append(out, c.RomHindi...)
	out = append(out, c.English...)
	out = append(out, c.Other...)
	return out
}

// Relevance labels assigned by the filtering stage.
const (
	RelevanceRelevant   = "relevant"
	RelevanceIrrelevant = "irrelevant"
	RelevanceError      = "error"
)

// FilteredComment is one JSONL row in the relevant/irrelevant/error
// partitions.
type FilteredComment struct {
	Comment  string `json:"comment"`
	Language string `json:"language"`
}

// FilterResult pairs a comment with the classification the model returned
// for it.
type FilterResult struct {
	Comment        string `json:"comment"`
	Classification string `json:"classification"`
}
