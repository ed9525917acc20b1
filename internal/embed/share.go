package embed

import "fmt"

// ShareLinks are the social intents offered after a donation
type ShareLinks struct {
	Message  string `json:"message"`
	Twitter  string `json:"twitter"`
	Facebook string `json:"facebook"`
	LinkedIn string `json:"linkedin"`
}

func ShareMessage(projectName, amount, symbol string) string {
	return fmt.Sprintf("I just donated %s %s to %s! Support public goods on %s 🌱", amount, symbol, projectName, Brand)
}

// Share builds the share intents for a completed donation
func Share(projectName, projectURL, amount, symbol string) ShareLinks {
	message := ShareMessage(projectName, amount, symbol)
	msg := EncodeURIComponent(message)
	link := EncodeURIComponent(projectURL)

	return ShareLinks{
		Message: message,
		Twitter: fmt.Sprintf("https://twitter.com/intent/tweet?text=%s&url=%s&hashtags=FundPublicGoods,%s",
			msg, link, Brand),
		Facebook: fmt.Sprintf("https://www.facebook.com/sharer/sharer.php?u=%s&quote=%s", link, msg),
		LinkedIn: fmt.Sprintf("https://www.linkedin.com/shareArticle?mini=true&url=%s&title=%s&summary=%s",
			link, EncodeURIComponent("Support "+projectName), msg),
	}
}
