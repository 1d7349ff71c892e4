package build

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Name is the program name used in the CLI and in outgoing requests.
const Name = "css-svg"

// FullVersion returns the version string with commit hash appended.
// Format: "Version+Commit" (e.g., "1.0.0+abc123")
func FullVersion() string {
	return Version + "+" + Commit
}

// UserAgent returns the default User-Agent header for remote SVG fetches.
func UserAgent() string {
	return Name + "/" + Version
}
