package outline

import "strings"

// Strategy names how section content is cut out of the document.
type Strategy string

const (
	// StrategyParagraph slices the flattened body text between title offsets.
	StrategyParagraph Strategy = "paragraph"
	// StrategyPageRange re-extracts body text over each section's pages.
	StrategyPageRange Strategy = "page_range"
)

// Accuracy is the fraction of titles that occur verbatim (case-sensitive)
// in text. With no titles every title is trivially found and the result is 1.
func Accuracy(titles []string, text string) float64 {
	if len(titles) == 0 {
		return 1
	}
	found := 0
	for _, title := range titles {
		if strings.Contains(text, title) {
			found++
		}
	}
	return float64(found) / float64(len(titles))
}

// ChooseStrategy picks paragraph slicing only when every title was found.
func ChooseStrategy(accuracy float64) Strategy {
	if accuracy == 1 {
		return StrategyParagraph
	}
	return StrategyPageRange
}
