package models

// Topic is one of the fixed classification tags.
type Topic string

const (
	TopicAI       Topic = "#AI"
	TopicClimate  Topic = "#Climate"
	TopicScience  Topic = "#Science"
	TopicPolitics Topic = "#Politics"
	TopicBusiness Topic = "#Business"
	TopicCrypto   Topic = "#Crypto"
	TopicTech     Topic = "#Tech"
)

// Subscription is a user's opt-in to a named source. Only active
// subscriptions take part in an ingestion run.
type Subscription struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Entry is one item extracted from a feed document. PubDate keeps the
// source-native format; it is parsed only by the time window filter.
type Entry struct {
	Title       string
	Link        string
	Description string
	PubDate     string
	Author      string
	Categories  []string
}

// Article is the persisted, normalized form of an entry. URL is unique
// across all stored articles.
type Article struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Source      string `json:"source"`
	Author      string `json:"author"`
	Topic       Topic  `json:"topic"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	PublishedAt string `json:"published_at"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Request is the input of one ingestion run.
type Request struct {
	TimeFilter string `json:"timeFilter"`
	UserID     string `json:"userId"`
}

// Result is the output of one ingestion run. Articles holds the rows the
// store acknowledged, not the locally assembled batch.
type Result struct {
	Success       bool      `json:"success"`
	ArticlesAdded int       `json:"articlesAdded"`
	Articles      []Article `json:"articles,omitempty"`
	Message       string    `json:"message,omitempty"`
}
