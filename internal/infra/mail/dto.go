package mail

type MeetingEmailData struct {
	FirstName string
	LastName  string
	Company   string
	Email     string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	NotifyTo string

	dialer Dialer
}
