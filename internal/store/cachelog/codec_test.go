package cachelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/commentrank/internal/core/comment"
)

func TestEncode(t *testing.T) {
	line, err := Encode(comment.Record{ID: "Ugx1", Text: "it&#39;s good", LikeCount: 12})
	require.NoError(t, err)
	assert.Equal(t, "Ugx1!SEPERATOR!it&#39;s good!SEPERATOR!12\n", line)
}

func TestEncode_FlattensNewlines(t *testing.T) {
	line, err := Encode(comment.Record{ID: "a", Text: "one\ntwo\r\nthree\rfour", LikeCount: 0})
	require.NoError(t, err)
	assert.Equal(t, "a!SEPERATOR!one two three four!SEPERATOR!0\n", line)
}

func TestEncode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		rec  comment.Record
	}{
		{name: "empty id", rec: comment.Record{Text: "x"}},
		{name: "newline in id", rec: comment.Record{ID: "a\nb"}},
		{name: "separator in id", rec: comment.Record{ID: "a" + Separator}},
		{name: "negative likes", rec: comment.Record{ID: "a", LikeCount: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.rec)
			assert.ErrorIs(t, err, ErrUnencodable)
		})
	}
}

func TestEncode_SeparatorInText(t *testing.T) {
	rec := comment.Record{ID: "a1", Text: "x " + Separator + " y", LikeCount: 7}

	line, err := Encode(rec)
	require.NoError(t, err)
	assert.Equal(t, "a1!SEPERATOR!x !SEPERATOR! y!SEPERATOR!7\n", line)

	got, err := Decode(line)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    comment.Record
		wantErr bool
	}{
		{
			name: "valid",
			line: "Ugx1!SEPERATOR!hello!SEPERATOR!5\n",
			want: comment.Record{ID: "Ugx1", Text: "hello", LikeCount: 5},
		},
		{
			name: "crlf and padding",
			line: "Ugx1!SEPERATOR! hello !SEPERATOR! 5 \r\n",
			want: comment.Record{ID: "Ugx1", Text: "hello", LikeCount: 5},
		},
		{
			name: "empty text",
			line: "Ugx1!SEPERATOR!!SEPERATOR!0",
			want: comment.Record{ID: "Ugx1", Text: "", LikeCount: 0},
		},
		{
			name: "sentinel",
			line: "Ugx1!SEPERATOR!not found!SEPERATOR!0\n",
			want: comment.NotFound("Ugx1"),
		},
		{
			name: "separator inside text is recovered",
			line: "Ugx1!SEPERATOR!a!SEPERATOR!b!SEPERATOR!7\n",
			want: comment.Record{ID: "Ugx1", Text: "a!SEPERATOR!b", LikeCount: 7},
		},
		{name: "too few fields", line: "Ugx1!SEPERATOR!hello\n", wantErr: true},
		{name: "no separator", line: "just some text\n", wantErr: true},
		{name: "non numeric likes", line: "Ugx1!SEPERATOR!hi!SEPERATOR!lots\n", wantErr: true},
		{name: "negative likes", line: "Ugx1!SEPERATOR!hi!SEPERATOR!-3\n", wantErr: true},
		{name: "empty id", line: "!SEPERATOR!hi!SEPERATOR!3\n", wantErr: true},
		{name: "truncated like count", line: "Ugx1!SEPERATOR!hi!SEPERATOR!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.line)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	rec := comment.Record{ID: "UgwXYZ", Text: "&quot;quoted&quot; &amp; more", LikeCount: 1024}

	line, err := Encode(rec)
	require.NoError(t, err)

	got, err := Decode(line)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}
