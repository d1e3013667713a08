package agent

// WebSearchPage is the reserved page number carried by documents that did not
// come from the page corpus.
const WebSearchPage = -1

// ContentKind tags what a document's payload is.
type ContentKind int

const (
	// ContentImage marks a payload holding a rendered page image, encoded as
	// a data URL.
	ContentImage ContentKind = iota

	// ContentText marks a plain-text payload, e.g. joined web search
	// snippets.
	ContentText
)

// Content is a tagged payload: either a page image or plain text. The tag is
// fixed at construction so image/text classification never depends on
// convention.
type Content struct {
	kind ContentKind
	data string
}

// ImageContent wraps a rendered page image given as a data URL.
func ImageContent(dataURL string) Content {
	return Content{kind: ContentImage, data: dataURL}
}

// TextContent wraps a plain-text payload.
func TextContent(text string) Content {
	return Content{kind: ContentText, data: text}
}

// Kind returns the payload tag.
func (c Content) Kind() ContentKind { return c.kind }

// Data returns the raw payload: a data URL for images, plain text otherwise.
func (c Content) Data() string { return c.data }

// Document is one unit of evidence: a retrieved page image or a text blob
// from web search.
type Document struct {
	// Content is the tagged payload.
	Content Content

	// PageNumber is the page index within the source document, or
	// WebSearchPage for evidence that is not a corpus page.
	PageNumber int

	// Metadata is an open mapping. Text documents always carry
	// "type": "text" so serialized documents stay classifiable by metadata
	// alone.
	Metadata map[string]any
}

// NewPageDocument builds an image document for a retrieved corpus page.
func NewPageDocument(dataURL string, page int, metadata map[string]any) Document {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return Document{
		Content:    ImageContent(dataURL),
		PageNumber: page,
		Metadata:   metadata,
	}
}

// NewWebDocument builds the single text document wrapping web search
// snippets.
func NewWebDocument(text string) Document {
	return Document{
		Content:    TextContent(text),
		PageNumber: WebSearchPage,
		Metadata: map[string]any{
			"source": "web_search",
			"type":   "text",
		},
	}
}

// IsText reports whether the document carries a text payload.
func (d Document) IsText() bool {
	return d.Content.Kind() == ContentText
}

// imageSubset returns the image-bearing documents in input order.
func imageSubset(docs []Document) []Document {
	var images []Document
	for _, doc := range docs {
		if !doc.IsText() {
			images = append(images, doc)
		}
	}
	return images
}
