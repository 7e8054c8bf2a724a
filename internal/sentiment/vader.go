package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

// YouTube's textDisplay format can carry residual markup like <br> even in
// plain-text mode.
var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func removeHTMLTags(input string) string {
	return htmlTagPattern.ReplaceAllString(input, " ")
}

func RemoveLinks(input string) string {
	linkPattern := regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text

	urlPattern := regexp.MustCompile(`https?://\S+|www\.\S+`)
	input = urlPattern.ReplaceAllString(input, "")

	return input
}

// ConvertMarkdownToText flattens any markdown YouTube preserved in a comment
// and collapses whitespace, so VADER sees plain prose.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := strings.Join(strings.Fields(removeHTMLTags(string(output))), " ")

	return RemoveLinks(plainText)
}

// AnalyzeWithVADER scores a comment's sentiment as a baseline alongside the
// toxicity scores. Returns the compound score and a coarse label.
func AnalyzeWithVADER(text string) (float64, string) {
	plainText := ConvertMarkdownToText(text)

	sentiment := analyzer.PolarityScores(plainText)
	score := sentiment.Compound

	var label string
	if score >= 0.20 {
		label = "positive"
	} else if score <= -0.20 {
		label = "negative"
	} else {
		label = "neutral"
	}

	return score, label
}
