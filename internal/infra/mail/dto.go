package mail

type WelcomeEmailData struct {
	Name string
}

// Credential is one SMTP login. The sender rotates through these when a send
// fails — the provider throttles individual accounts.
type Credential struct {
	User     string
	Password string
}
