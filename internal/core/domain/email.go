package domain

// Email is an outbound transactional message.
type Email struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}
