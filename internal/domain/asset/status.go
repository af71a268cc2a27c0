package asset

type Status string

const (
	StatusUploading  Status = "uploading"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

var validStatuses = map[Status]bool{
	StatusUploading:  true,
	StatusProcessing: true,
	StatusReady:      true,
	StatusFailed:     true,
}

func (s Status) IsValid() bool {
	return validStatuses[s]
}

func (s Status) String() string {
	return string(s)
}

// Provider says where the playable stream comes from.
type Provider string

const (
	ProviderHLS     Provider = "hls"
	ProviderYouTube Provider = "youtube"
)

func (p Provider) IsValid() bool {
	return p == ProviderHLS || p == ProviderYouTube
}
