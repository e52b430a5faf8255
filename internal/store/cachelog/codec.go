package cachelog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hay-kot/commentrank/internal/core/comment"
)

// Separator splits the fields of a cache line. The misspelling is kept so
// caches written by earlier versions of the tool stay readable.
const Separator = "!SEPERATOR!"

var (
	// ErrMalformed is returned by Decode for a line that is not a record.
	ErrMalformed = errors.New("malformed cache line")
	// ErrUnencodable is returned by Encode for a record that cannot be
	// written without breaking the line format.
	ErrUnencodable = errors.New("record cannot be encoded")
)

var newlines = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Encode renders rec as a single cache line, including the trailing newline.
// Newlines in the text are flattened to spaces. The text may contain
// Separator: Decode takes the first field as the id and the last as the like
// count, so the line stays unambiguous.
func Encode(rec comment.Record) (string, error) {
	switch {
	case rec.ID == "":
		return "", fmt.Errorf("%w: empty id", ErrUnencodable)
	case strings.ContainsAny(rec.ID, "\r\n"):
		return "", fmt.Errorf("%w: id %q contains a newline", ErrUnencodable, rec.ID)
	case strings.Contains(rec.ID, Separator):
		return "", fmt.Errorf("%w: id %q contains the field separator", ErrUnencodable, rec.ID)
	case rec.LikeCount < 0:
		return "", fmt.Errorf("%w: negative like count %d for %s", ErrUnencodable, rec.LikeCount, rec.ID)
	}

	var b strings.Builder
	b.Grow(len(rec.ID) + len(rec.Text) + 2*len(Separator) + 8)
	b.WriteString(rec.ID)
	b.WriteString(Separator)
	b.WriteString(newlines.Replace(rec.Text))
	b.WriteString(Separator)
	b.WriteString(strconv.FormatInt(rec.LikeCount, 10))
	b.WriteByte('\n')
	return b.String(), nil
}

// Decode parses one cache line. Text is returned as stored, surrounding
// whitespace trimmed. A line with more than three fields is recovered by
// treating the first field as the id, the last as the like count, and
// everything between as text.
func Decode(line string) (comment.Record, error) {
	line = strings.TrimRight(line, "\r\n")

	fields := strings.Split(line, Separator)
	if len(fields) < 3 {
		return comment.Record{}, fmt.Errorf("%w: want 3 fields, got %d", ErrMalformed, len(fields))
	}

	id := strings.TrimSpace(fields[0])
	if id == "" {
		return comment.Record{}, fmt.Errorf("%w: empty id", ErrMalformed)
	}

	rawLikes := strings.TrimSpace(fields[len(fields)-1])
	likes, err := strconv.ParseInt(rawLikes, 10, 64)
	if err != nil || likes < 0 {
		return comment.Record{}, fmt.Errorf("%w: like count %q is not a non-negative integer", ErrMalformed, rawLikes)
	}

	text := strings.Join(fields[1:len(fields)-1], Separator)

	return comment.Record{
		ID:        id,
		Text:      strings.TrimSpace(text),
		LikeCount: likes,
	}, nil
}
