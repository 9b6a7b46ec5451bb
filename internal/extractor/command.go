package extractor

// Mode selects which behaviour the external tool is invoked in. METADATA
// dumps a single JSON document on stdout, the other two fetch the source
// and write a converted file to the output path provided.
type Mode int

const (
	METADATA Mode = iota
	VIDEO
	AUDIO
)

// buildArgs constructs the argument vector for an invocation. The URL is
// always passed as a discrete argument, never interpolated into a shell
// string, so no escaping of the caller-provided value is required here.
func buildArgs(mode Mode, url string, outputPath string) []string {
	switch mode {
	case METADATA:
		return []string{"-J", "--no-playlist", "--no-warnings", url}
	case VIDEO:
		return []string{
			"-f", "best[ext=mp4]",
			"--no-playlist",
			"--force-overwrites",
			"-o", outputPath,
			url,
		}
	case AUDIO:
		return []string{
			"-x", "--audio-format", "mp3",
			"--no-playlist",
			"--force-overwrites",
			"-o", outputPath,
			url,
		}
	}

	return nil
}

func (m Mode) String() string {
	switch m {
	case METADATA:
		return "METADATA"
	case VIDEO:
		return "VIDEO"
	case AUDIO:
		return "AUDIO"
	default:
		return "UNKNOWN"
	}
}
