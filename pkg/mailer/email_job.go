package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html,omitempty"`
	Kind    string `json:"kind,omitempty"` // e.g. "certification"
}

const KindCertification = "certification"

// Valid reports whether the job has everything Mailgun needs.
func (j EmailJob) Valid() bool {
	return j.To != "" && j.Subject != "" && (j.Text != "" || j.HTML != "")
}
