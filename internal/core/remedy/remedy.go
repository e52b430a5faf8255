// Package remedy defines user-facing fatal errors that carry the steps needed
// to fix them.
package remedy

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Error is a fatal error with remediation steps written in markdown.
type Error struct {
	Title string
	Steps string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Title
	}
	return e.Title + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Markdown returns the full message as a markdown document.
func (e *Error) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", e.Title)
	if e.Err != nil {
		fmt.Fprintf(&sb, "`%s`\n\n", e.Err.Error())
	}
	sb.WriteString(strings.TrimSpace(e.Steps))
	sb.WriteString("\n")
	return sb.String()
}

const takeoutSteps = `
1. Request your YouTube data from Google Takeout at https://takeout.google.com/settings/takeout.
   Choose **Deselect all**, select only **YouTube and YouTube Music**, and request the export.
   Google emails a download link once the export is ready.
2. Extract the archive and run commentrank from inside the ` + "`Takeout`" + ` folder, or pass
   ` + "`--takeout-dir`" + ` pointing at it. The comment files live in
   ` + "`YouTube and YouTube Music/comments`" + `.
3. Files in another layout can be listed directly with ` + "`--input 'path/**/*.csv'`" + `.
`

const apiKeySteps = `
A YouTube Data API v3 key is free. Going over the daily quota only stops the run;
progress is cached and the next run picks up where this one ended.

1. Sign in to the Google Cloud Console at https://console.cloud.google.com/.
2. Open the project picker at the top left and create a project.
3. Enable the API at https://console.cloud.google.com/marketplace/product/google/youtube.googleapis.com.
4. Open **Credentials**, choose **Create credentials** and then **API key**.
5. Provide the key with ` + "`--api-key`" + `, the ` + "`YOUTUBE_V3_API_KEY`" + ` environment variable,
   or ` + "`api_key`" + ` in the config file (` + "`commentrank init`" + ` writes one).
`

// MissingInputs reports that no Takeout comment files were found.
func MissingInputs(err error) *Error {
	return &Error{Title: "Couldn't find the Google Takeout comment files", Steps: takeoutSteps, Err: err}
}

// MissingAPIKey reports that no YouTube API key is configured.
func MissingAPIKey(err error) *Error {
	return &Error{Title: "A YouTube API key is required", Steps: apiKeySteps, Err: err}
}

// Render writes err to w. Remediation errors are rendered as styled
// markdown when tty is true and as plain markdown otherwise. Other errors
// are written as a single line.
func Render(w io.Writer, err error, tty bool) error {
	var rerr *Error
	if !errors.As(err, &rerr) {
		_, werr := fmt.Fprintln(w, err.Error())
		return werr
	}

	md := rerr.Markdown()
	if !tty {
		_, werr := io.WriteString(w, md)
		return werr
	}

	renderer, rendErr := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(100),
	)
	if rendErr == nil {
		if out, rendErr := renderer.Render(md); rendErr == nil {
			_, werr := io.WriteString(w, out)
			return werr
		}
	}

	_, werr := io.WriteString(w, md)
	return werr
}
