package access

// Source describes how a grant came to exist.
type Source string

const (
	SourcePayment Source = "payment"
	SourceWebhook Source = "webhook"
	SourceAdmin   Source = "admin"
	SourceDev     Source = "dev_purchase"
)

var validSources = map[Source]bool{
	SourcePayment: true,
	SourceWebhook: true,
	SourceAdmin:   true,
	SourceDev:     true,
}

func (s Source) IsValid() bool {
	return validSources[s]
}

func (s Source) String() string {
	return string(s)
}
