package constants

const (
	Version     = "0.1.0"
	ServiceName = "dnsstcloudflare"
	ConfigDir   = ".dnsstcloudflare"
)
