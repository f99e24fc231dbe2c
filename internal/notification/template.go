package notification

import (
	"bytes"
	"html/template"
	ttemplate "text/template"
)

// WelcomeSubject is the subject of every driver welcome email.
const WelcomeSubject = "Welcome to Swiftline Carrier!"

// DefaultSenderName is the display name used in the From header.
const DefaultSenderName = "Swiftline Admin"

// fallbackName greets drivers whose document has no fullName.
const fallbackName = "Driver"

// welcomeHTML is the welcome email body. {{.Name}} is auto-escaped.
var welcomeHTML = template.Must(template.New("welcome").Parse(`<html>
  <body>
    <h2>Welcome, {{.Name}}!</h2>
    <p>Your driver account for <b>Swiftline</b> has been created.</p>
    <p>Please log in using your registered email.</p>
    <br>
    <p>Safe driving,<br>The Swiftline Team</p>
  </body>
</html>
`))

var welcomeText = ttemplate.Must(ttemplate.New("welcome-text").Parse(`Welcome, {{.Name}}!

Your driver account for Swiftline has been created.
Please log in using your registered email.

Safe driving,
The Swiftline Team
`))

// ComposeWelcome builds the welcome message for one driver.
func ComposeWelcome(creds Credentials, senderName, recipient, name string) (Message, error) {
	if name == "" {
		name = fallbackName
	}
	data := struct{ Name string }{name}

	var html bytes.Buffer
	if err := welcomeHTML.Execute(&html, data); err != nil {
		return Message{}, err
	}
	var text bytes.Buffer
	if err := welcomeText.Execute(&text, data); err != nil {
		return Message{}, err
	}

	return Message{
		FromName: senderName,
		From:     creds.SenderEmail,
		To:       recipient,
		Subject:  WelcomeSubject,
		HTML:     html.String(),
		Text:     text.String(),
	}, nil
}
