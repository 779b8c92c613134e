package domain

const (
	// ConfigFileName is the tool-server configuration document, discovered
	// by walking up from the working directory.
	ConfigFileName = "relay.json"

	// PolicyOverridesFileName is the optional caching policy overrides
	// file, looked up next to the configuration document.
	PolicyOverridesFileName = "relay.policy.yaml"
)
