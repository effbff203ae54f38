package csvsafe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_HeaderAndRows(t *testing.T) {
	text := "firstName,lastName,teamName\nJon,Smith,Thunder FC\nAva,Lopez,Storm\n"

	doc, err := Parse(text)
	require.NoError(t, err)
	require.Equal(t, []string{"firstName", "lastName", "teamName"}, doc.Headers)
	require.Len(t, doc.Rows, 2)
	require.Equal(t, "Jon", doc.Rows[0].Values["firstName"])
	require.Equal(t, "Storm", doc.Rows[1].Values["teamName"])
	require.Equal(t, 2, doc.Rows[0].Line)
	require.Equal(t, 3, doc.Rows[1].Line)
}

func TestParse_ShortRowPaddedWithEmptyCells(t *testing.T) {
	doc, err := Parse("a,b,c\n1,2\n")
	require.NoError(t, err)
	require.Len(t, doc.Rows, 1)
	require.Equal(t, "1", doc.Rows[0].Values["a"])
	require.Equal(t, "2", doc.Rows[0].Values["b"])
	require.Equal(t, "", doc.Rows[0].Values["c"])
}

func TestParse_SkipsBlankLines(t *testing.T) {
	doc, err := Parse("a,b\n\n1,2\n\n3,4\n")
	require.NoError(t, err)
	require.Len(t, doc.Rows, 2)
}

func TestParse_StripsBOM(t *testing.T) {
	doc, err := Parse("\uFEFFa,b\n1,2\n")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, doc.Headers)
}

func TestParse_EmptyInputIsHardFailure(t *testing.T) {
	_, err := Parse("")
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestParse_QuotedDelimiters(t *testing.T) {
	doc, err := Parse("name,note\n\"Smith, Jr\",\"said \"\"hi\"\"\"\n")
	require.NoError(t, err)
	require.Equal(t, "Smith, Jr", doc.Rows[0].Values["name"])
	require.Equal(t, `said "hi"`, doc.Rows[0].Values["note"])
}

func TestSerialize_FormulaValuePrefixed(t *testing.T) {
	out := Serialize([]string{"v"}, []map[string]string{{"v": "=1+1"}})
	require.Equal(t, "v\n'=1+1\n", out)
}

func TestSerialize_DangerousCharNotAtStartUntouched(t *testing.T) {
	out := Serialize([]string{"v"}, []map[string]string{{"v": "Team = Winners"}})
	require.Equal(t, "v\nTeam = Winners\n", out)
}

func TestSerialize_AllTriggerCharacters(t *testing.T) {
	for _, v := range []string{"=x", "+x", "-x", "@x", "\tx", "\rx"} {
		out := Serialize([]string{"v"}, []map[string]string{{"v": v}})
		require.Contains(t, out, "'"+v[:1], "value %q should be quote-prefixed", v)
	}
}

func TestSerialize_DelimiterEscaping(t *testing.T) {
	out := Serialize([]string{"v"}, []map[string]string{{"v": `a,b "c"`}})
	require.Equal(t, "v\n\"a,b \"\"c\"\"\"\n", out)
}

func TestRoundTrip_ByteIdentical(t *testing.T) {
	headers := []string{"firstName", "lastName", "school"}
	text := "firstName,lastName,school\nJon,Smith,Westlake HS\nAva,Lopez,Bowie HS\n"

	doc, err := Parse(text)
	require.NoError(t, err)

	rows := make([]map[string]string, len(doc.Rows))
	for i, r := range doc.Rows {
		rows[i] = r.Values
	}
	require.Equal(t, text, Serialize(headers, rows))
}

func TestRoundTrip_SanitizedValueSurvivesReparse(t *testing.T) {
	out := Serialize([]string{"v"}, []map[string]string{{"v": "=SUM(A1)"}})
	doc, err := Parse(out)
	require.NoError(t, err)
	// The leading quote is the expected, semantically intended artifact.
	require.Equal(t, "'=SUM(A1)", doc.Rows[0].Values["v"])
}

func TestSerializeRecords_PositionalOrder(t *testing.T) {
	out := SerializeRecords([]string{"a", "b"}, [][]string{{"1", "2"}, {"3"}})
	require.Equal(t, "a,b\n1,2\n3,\n", out)
}

func TestParse_CustomDelimiter(t *testing.T) {
	doc, err := Parse("a;b\n1;2\n", WithDelimiter(';'))
	require.NoError(t, err)
	require.Equal(t, "2", doc.Rows[0].Values["b"])
}
