package registry

// DefaultImage is returned for sources the registry does not know.
const DefaultImage = "https://images.unsplash.com/photo-1504711434969-e33886168f5c?w=800&q=80"

// Source describes where a named source publishes its feed and which
// placeholder image its articles carry.
type Source struct {
	FeedURL  string `json:"feed_url"`
	ImageURL string `json:"image_url"`
}

// Registry maps source names to their feed endpoint and placeholder image.
// It is immutable once built and safe for concurrent reads.
type Registry struct {
	sources      map[string]Source
	defaultImage string
}

// New copies sources into a new Registry. An empty defaultImage falls back
// to DefaultImage.
func New(sources map[string]Source, defaultImage string) *Registry {
	if defaultImage == "" {
		defaultImage = DefaultImage
	}
	copied := make(map[string]Source, len(sources))
	for name, src := range sources {
		copied[name] = src
	}
	return &Registry{sources: copied, defaultImage: defaultImage}
}

// Defaults returns the built-in source table used when the configuration
// declares no sources.
func Defaults() map[string]Source {
	return map[string]Source{
		"Wired": {
			FeedURL:  "https://www.wired.com/feed/rss",
			ImageURL: "https://images.unsplash.com/photo-1677442136019-21780ecad995?w=800&q=80",
		},
		"TechCrunch": {
			FeedURL:  "https://techcrunch.com/feed/",
			ImageURL: "https://images.unsplash.com/photo-1555066931-4365d14bab8c?w=800&q=80",
		},
		"MIT Tech Review": {
			FeedURL:  "https://www.technologyreview.com/feed/",
			ImageURL: "https://images.unsplash.com/photo-1451187580459-43490279c0fa?w=800&q=80",
		},
		"The Guardian": {
			FeedURL:  "https://www.theguardian.com/technology/rss",
			ImageURL: "https://images.unsplash.com/photo-1504711434969-e33886168f5c?w=800&q=80",
		},
		"BBC Science": {
			FeedURL:  "https://feeds.bbci.co.uk/news/science_and_environment/rss.xml",
			ImageURL: "https://images.unsplash.com/photo-1614728423169-3f65fd722b7e?w=800&q=80",
		},
		"Ars Technica": {
			FeedURL:  "https://feeds.arstechnica.com/arstechnica/index",
			ImageURL: "https://images.unsplash.com/photo-1519389950473-47ba0277781c?w=800&q=80",
		},
		"The Verge": {
			FeedURL:  "https://www.theverge.com/rss/index.xml",
			ImageURL: "https://images.unsplash.com/photo-1550745165-9bc0b252726f?w=800&q=80",
		},
	}
}

// FeedURL reports the endpoint for name. ok is false for unknown sources or
// sources with no endpoint configured.
func (r *Registry) FeedURL(name string) (url string, ok bool) {
	src, found := r.sources[name]
	if !found || src.FeedURL == "" {
		return "", false
	}
	return src.FeedURL, true
}

// Image returns the placeholder image for name, or the registry default.
func (r *Registry) Image(name string) string {
	if src, ok := r.sources[name]; ok && src.ImageURL != "" {
		return src.ImageURL
	}
	return r.defaultImage
}
