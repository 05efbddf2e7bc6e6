package pipeline

import (
	"strings"

	"feed_ingestor/internal/models"
)

type topicRule struct {
	topic    models.Topic
	keywords []string
}

// Rules are tested in order; the first rule with a matching keyword wins.
// Keywords match as plain substrings, so "ai" also matches inside words.
var topicRules = []topicRule{
	{models.TopicAI, []string{"ai", "artificial intelligence", "machine learning"}},
	{models.TopicClimate, []string{"climate", "environment", "carbon"}},
	{models.TopicScience, []string{"space", "mars", "nasa"}},
	{models.TopicPolitics, []string{"policy", "regulation", "government"}},
	{models.TopicBusiness, []string{"startup", "funding", "investment"}},
	{models.TopicCrypto, []string{"crypto", "blockchain", "bitcoin"}},
}

// Classify tags an entry from its title and summary. Categories are
// accepted but currently do not affect the result.
func Classify(title, summary string, categories []string) models.Topic {
	text := strings.ToLower(title + " " + summary)
	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.topic
			}
		}
	}
	return models.TopicTech
}
