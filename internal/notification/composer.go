package notification

import (
	"embed"
	"fmt"
	"time"

	"github.com/aymerick/raymond"

	"github.com/ricirt/breed-query-worker/internal/domain"
)

//go:embed templates/*.hbs
var templateFS embed.FS

const (
	SuccessSubject = "Your breed query results - Cat API"
	FailureSubject = "Error processing your breed query - Cat API"
)

// Kind distinguishes result notifications from error notifications.
type Kind string

const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
)

// Notification is a rendered message ready for the notification transport.
// HTML and Text depend only on the composer inputs; the generation time is
// kept in its own field and never rendered into the bodies.
type Notification struct {
	Kind        Kind
	Subject     string
	HTML        string
	Text        string
	GeneratedAt time.Time
}

// Composer renders query results and errors into notifications.
// It performs no I/O after construction and is safe for concurrent use.
type Composer struct {
	resultsHTML *raymond.Template
	resultsText *raymond.Template
	errorHTML   *raymond.Template
	errorText   *raymond.Template
	now         func() time.Time
}

// NewComposer parses the embedded templates.
func NewComposer() (*Composer, error) {
	c := &Composer{now: time.Now}

	for name, dst := range map[string]**raymond.Template{
		"templates/results.html.hbs": &c.resultsHTML,
		"templates/results.txt.hbs":  &c.resultsText,
		"templates/error.html.hbs":   &c.errorHTML,
		"templates/error.txt.hbs":    &c.errorText,
	} {
		src, err := templateFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		tpl, err := raymond.Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		*dst = tpl
	}
	return c, nil
}

// Success renders a result notification for requestType.
func (c *Composer) Success(requestType domain.RequestType, result domain.Result, requestID string) (Notification, error) {
	ctx, err := resultContext(result)
	if err != nil {
		return Notification{}, err
	}
	ctx["description"] = Describe(requestType)
	ctx["requestId"] = requestID

	return c.render(KindSuccess, SuccessSubject, c.resultsHTML, c.resultsText, ctx)
}

// Failure renders an error notification embedding cause's description.
func (c *Composer) Failure(requestType domain.RequestType, requestID string, cause error) (Notification, error) {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	ctx := map[string]interface{}{
		"description": Describe(requestType),
		"requestId":   requestID,
		"error":       msg,
	}
	return c.render(KindFailure, FailureSubject, c.errorHTML, c.errorText, ctx)
}

func (c *Composer) render(kind Kind, subject string, html, text *raymond.Template, ctx map[string]interface{}) (Notification, error) {
	htmlBody, err := html.Exec(ctx)
	if err != nil {
		return Notification{}, fmt.Errorf("render %s html: %w", kind, err)
	}
	textBody, err := text.Exec(ctx)
	if err != nil {
		return Notification{}, fmt.Errorf("render %s text: %w", kind, err)
	}
	return Notification{
		Kind:        kind,
		Subject:     subject,
		HTML:        htmlBody,
		Text:        textBody,
		GeneratedAt: c.now().UTC(),
	}, nil
}

// resultContext flattens a Result into template data. The switch covers
// every Result implementation.
func resultContext(result domain.Result) (map[string]interface{}, error) {
	var breeds []domain.Breed
	ctx := map[string]interface{}{}

	switch r := result.(type) {
	case nil:
	case domain.BreedListResult:
		breeds = r.Breeds
	case domain.OptionalBreedResult:
		if r.Breed != nil {
			breeds = []domain.Breed{*r.Breed}
		}
	case domain.SearchResult:
		breeds = r.Breeds
		ctx["criterion"] = string(r.Criterion)
		ctx["term"] = r.Term
	default:
		return nil, fmt.Errorf("unsupported result type %T", result)
	}

	items := make([]map[string]interface{}, 0, len(breeds))
	for _, b := range breeds {
		images := make([]string, 0, len(b.Images))
		for _, img := range b.Images {
			images = append(images, img.URL)
		}
		items = append(items, map[string]interface{}{
			"name":        b.Name,
			"origin":      b.Origin,
			"temperament": b.Temperament,
			"description": b.Description,
			"lifeSpan":    b.LifeSpan,
			"images":      images,
		})
	}

	ctx["empty"] = len(items) == 0
	ctx["count"] = len(items)
	ctx["breeds"] = items
	return ctx, nil
}

// Describe returns the human-readable name of a request type.
func Describe(requestType domain.RequestType) string {
	t, _ := domain.ParseRequestType(string(requestType))
	switch t {
	case domain.RequestListAll:
		return "List all breeds"
	case domain.RequestGetByID:
		return "Find breed by ID"
	case domain.RequestSearchByTrait:
		return "Search breeds by temperament"
	case domain.RequestSearchByOrigin:
		return "Search breeds by origin"
	default:
		return "Unidentified query"
	}
}
