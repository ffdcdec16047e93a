package config

// NotifyConfig holds settings for outbound email notifications.
// An empty API key disables sending entirely.
type NotifyConfig interface {
	GetResendAPIKey() string
	GetEmailFrom() string
}

type Notify struct{}

var _ NotifyConfig = Notify{}

func (Notify) GetResendAPIKey() string {
	return GetEnv("RESEND_API_KEY", "")
}

func (Notify) GetEmailFrom() string {
	return GetEnv("EMAIL_FROM", "Tablemate <noreply@tablemate.app>")
}
