package content

import (
	"encoding/json"

	"github.com/turtacn/CaratCompare/internal/domain/comparison"
)

const schemaContext = "https://schema.org"

type thing struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type imageObject struct {
	Type string `json:"@type"`
	URL  string `json:"url"`
}

type organization struct {
	Type string       `json:"@type"`
	Name string       `json:"name"`
	Logo *imageObject `json:"logo,omitempty"`
}

type webPageRef struct {
	Type string `json:"@type"`
	ID   string `json:"@id"`
}

type articleSchema struct {
	Context          string       `json:"@context"`
	Type             string       `json:"@type"`
	Headline         string       `json:"headline"`
	Description      string       `json:"description"`
	Author           organization `json:"author"`
	Publisher        organization `json:"publisher"`
	MainEntityOfPage webPageRef   `json:"mainEntityOfPage"`
	About            []thing      `json:"about"`
}

type faqAnswer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

type faqQuestion struct {
	Type           string    `json:"@type"`
	Name           string    `json:"name"`
	AcceptedAnswer faqAnswer `json:"acceptedAnswer"`
}

type faqSchema struct {
	Context    string        `json:"@context"`
	Type       string        `json:"@type"`
	MainEntity []faqQuestion `json:"mainEntity"`
}

type entryPoint struct {
	Type        string `json:"@type"`
	URLTemplate string `json:"urlTemplate"`
}

type searchAction struct {
	Type       string     `json:"@type"`
	Target     entryPoint `json:"target"`
	QueryInput string     `json:"query-input"`
}

type websiteSchema struct {
	Context         string       `json:"@context"`
	Type            string       `json:"@type"`
	Name            string       `json:"name"`
	URL             string       `json:"url"`
	Description     string       `json:"description"`
	PotentialAction searchAction `json:"potentialAction"`
}

// ArticleSchema returns the schema.org Article for a comparison page.
func (s Site) ArticleSchema(c comparison.Comparison, description string) json.RawMessage {
	return mustJSON(articleSchema{
		Context:     schemaContext,
		Type:        "Article",
		Headline:    c.A.String() + " vs " + c.B.String() + " Diamond Comparison",
		Description: description,
		Author:      organization{Type: "Organization", Name: s.Name},
		Publisher: organization{
			Type: "Organization",
			Name: s.Name,
			Logo: &imageObject{Type: "ImageObject", URL: s.URL("/static/logo.svg")},
		},
		MainEntityOfPage: webPageRef{Type: "WebPage", ID: s.URL(ComparePath(c))},
		About: []thing{
			{Type: "Thing", Name: "Diamond"},
			{Type: "Thing", Name: "Diamond Size"},
			{Type: "Thing", Name: "Diamond Shape"},
		},
	})
}

// FAQSchema returns the schema.org FAQPage for faqs.
func FAQSchema(items []FAQ) json.RawMessage {
	qs := make([]faqQuestion, 0, len(items))
	for _, f := range items {
		qs = append(qs, faqQuestion{
			Type:           "Question",
			Name:           f.Question,
			AcceptedAnswer: faqAnswer{Type: "Answer", Text: f.Answer},
		})
	}
	return mustJSON(faqSchema{Context: schemaContext, Type: "FAQPage", MainEntity: qs})
}

// WebsiteSchema returns the schema.org WebSite with a search action that
// resolves comparison slugs.
func (s Site) WebsiteSchema() json.RawMessage {
	return mustJSON(websiteSchema{
		Context:     schemaContext,
		Type:        "WebSite",
		Name:        s.Name,
		URL:         s.BaseURL,
		Description: "Visual diamond size comparison tool with actual measurements",
		PotentialAction: searchAction{
			Type:       "SearchAction",
			Target:     entryPoint{Type: "EntryPoint", URLTemplate: s.URL("/compare/{search_term_string}")},
			QueryInput: "required name=search_term_string",
		},
	})
}

func mustJSON(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		// All schema types are plain structs of strings.
		panic(err)
	}
	return b
}
