package mail

import (
    htmltemplate "html/template"
    "strings"
    texttemplate "text/template"
)

// Content is a rendered email without a recipient.
type Content struct {
    Subject string
    Text    string
    HTML    string
}

type pair struct {
    subject string
    text    *texttemplate.Template
    html    *htmltemplate.Template
}

func newPair(name, subject, text, html string) pair {
    return pair{
        subject: subject,
        text:    texttemplate.Must(texttemplate.New(name).Parse(text)),
        html:    htmltemplate.Must(htmltemplate.New(name).Parse(html)),
    }
}

var (
    confirmationTpl = newPair("confirmation", "Επιβεβαίωση Ραντεβού",
        "Αγαπητέ/ή,\n\nΤο ραντεβού σας στις {{.Date}} ώρα {{.Time}} έχει επιβεβαιωθεί.\n\nΕυχαριστούμε!\n\n"+
            "Για να ακυρώσετε το ραντεβού σας, επισκεφθείτε τον ακόλουθο σύνδεσμο: {{.CancelURL}}",
        `<p>Αγαπητέ/ή,</p>
<p>Το ραντεβού σας στις <strong>{{.Date}}</strong> ώρα <strong>{{.Time}}</strong> έχει επιβεβαιωθεί.</p>
<p>Ευχαριστούμε!</p>
<p>Για να ακυρώσετε το ραντεβού σας, επισκεφθείτε τον ακόλουθο σύνδεσμο: <a href="{{.CancelURL}}">Ακύρωση Ραντεβού</a></p>`)

    adminAlertTpl = newPair("admin_alert", "Νέο Ραντεβού Κλείστηκε",
        "📅 Νέο ραντεβού:\n- Όνομα: {{.Name}}\n- Τηλέφωνο: {{.Phone}}\n- Ημερομηνία: {{.Date}}\n- Ώρα: {{.Time}}\n- Email: {{.Email}}",
        `<h3>📅 Νέο Ραντεβού</h3>
<p><strong>Όνομα:</strong> {{.Name}}</p>
<p><strong>Τηλέφωνο:</strong> {{.Phone}}</p>
<p><strong>Ημερομηνία:</strong> {{.Date}}</p>
<p><strong>Ώρα:</strong> {{.Time}}</p>
<p><strong>Email:</strong> {{.Email}}</p>`)

    cancelLinkTpl = newPair("cancel_link", "Σύνδεσμος Ακύρωσης Ραντεβού",
        "Αγαπητέ/ή,\n\nΠαρακαλώ χρησιμοποιήστε τον ακόλουθο σύνδεσμο για να ακυρώσετε το ραντεβού σας:\n\n{{.CancelURL}}\n\nΕυχαριστούμε!",
        `<p>Αγαπητέ/ή,</p>
<p>Παρακαλώ χρησιμοποιήστε τον ακόλουθο σύνδεσμο για να ακυρώσετε το ραντεβού σας:</p>
<p><a href="{{.CancelURL}}">Ακύρωση Ραντεβού</a></p>
<p>Ευχαριστούμε!</p>`)
)

// Fields feeds the templates.  Unused fields are ignored by each template.
type Fields struct {
    Name      string
    Phone     string
    Email     string
    Date      string
    Time      string
    CancelURL string
}

func (p pair) render(f Fields) (Content, error) {
    var text, html strings.Builder
    if err := p.text.Execute(&text, f); err != nil {
        return Content{}, err
    }
    if err := p.html.Execute(&html, f); err != nil {
        return Content{}, err
    }
    return Content{Subject: p.subject, Text: text.String(), HTML: html.String()}, nil
}

// Confirmation is sent to the customer after a booking.
func Confirmation(f Fields) (Content, error) { return confirmationTpl.render(f) }

// AdminAlert tells the studio about a new booking.
func AdminAlert(f Fields) (Content, error) { return adminAlertTpl.render(f) }

// CancelLink resends the self-service cancellation link.
func CancelLink(f Fields) (Content, error) { return cancelLinkTpl.render(f) }
