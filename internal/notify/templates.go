package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io"
	texttemplate "text/template"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/queue"
)

// view is what every template renders from.
type view struct {
	Venue string
	queue.BookingEvent
}

const customerCreatedText = `Hi {{.Name}},

Thank you for booking with {{.Venue}}. Your request is registered:

  Date:    {{.Date}}
  Time:    {{.Time}} ({{.Session}})
  Guests:  {{.Guests}}
{{- if .Requests}}
  Notes:   {{.Requests}}
{{- end}}
{{if .ManageURL}}
You can change or cancel your booking here until {{.TokenExpiresAt}}:
{{.ManageURL}}
{{end}}
See you soon,
{{.Venue}}
`

const customerCreatedHTML = `<!DOCTYPE html>
<html><body style="font-family: sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
<h2>Hi {{.Name}},</h2>
<p>Thank you for booking with {{.Venue}}. Your request is registered:</p>
<ul>
  <li><strong>Date:</strong> {{.Date}}</li>
  <li><strong>Time:</strong> {{.Time}} ({{.Session}})</li>
  <li><strong>Guests:</strong> {{.Guests}}</li>
  {{if .Requests}}<li><strong>Notes:</strong> {{.Requests}}</li>{{end}}
</ul>
{{if .ManageURL}}<p><a href="{{.ManageURL}}">Change or cancel your booking</a> (link valid until {{.TokenExpiresAt}}).</p>{{end}}
<p>See you soon,<br>{{.Venue}}</p>
</body></html>
`

const venueCreatedText = `New booking {{.BookingID}}

  Name:    {{.Name}}
  Email:   {{.Email}}
  Phone:   {{.Phone}}
  Date:    {{.Date}}
  Time:    {{.Time}} ({{.Session}})
  Guests:  {{.Guests}}
  Notes:   {{if .Requests}}{{.Requests}}{{else}}-{{end}}
`

const customerUpdatedText = `Hi {{.Name}},

Your booking at {{.Venue}} has been updated:

  Date:    {{.Date}}
  Time:    {{.Time}} ({{.Session}})
  Guests:  {{.Guests}}
{{- if .Requests}}
  Notes:   {{.Requests}}
{{- end}}
{{if .ManageURL}}
Manage it here: {{.ManageURL}}
{{end}}
{{.Venue}}
`

const customerCancelledText = `Hi {{.Name}},

Your booking at {{.Venue}} for {{.Date}} at {{.Time}} has been cancelled.
If this was a mistake, you are welcome to book again.

{{.Venue}}
`

var (
	tmplCustomerCreatedText = texttemplate.Must(texttemplate.New("customer_created").Parse(customerCreatedText))
	tmplCustomerCreatedHTML = htmltemplate.Must(htmltemplate.New("customer_created_html").Parse(customerCreatedHTML))
	tmplVenueCreatedText    = texttemplate.Must(texttemplate.New("venue_created").Parse(venueCreatedText))
	tmplCustomerUpdatedText = texttemplate.Must(texttemplate.New("customer_updated").Parse(customerUpdatedText))
	tmplCustomerCancelText  = texttemplate.Must(texttemplate.New("customer_cancelled").Parse(customerCancelledText))
)

// executor is satisfied by both text and html templates.
type executor interface {
	Execute(w io.Writer, data any) error
}

func render(t executor, v view) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func subject(kind queue.EventKind, v view, forVenue bool) string {
	switch {
	case kind == queue.BookingCreated && forVenue:
		return fmt.Sprintf("New booking: %s, %s %s, %d guests", v.Name, v.Date, v.Time, v.Guests)
	case kind == queue.BookingCreated:
		return fmt.Sprintf("Your booking at %s on %s", v.Venue, v.Date)
	case kind == queue.BookingUpdated:
		return fmt.Sprintf("Your booking at %s has been updated", v.Venue)
	default:
		return fmt.Sprintf("Your booking at %s has been cancelled", v.Venue)
	}
}
