package sink

import (
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dustin/go-elasticsearch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dustin/go-wikietym"
	"github.com/dustin/go-wikietym/etym"
)

func testRecords() []etym.Record {
	inh := etym.Record{
		Lang: "English", Term: "dog", Reltype: etym.InheritedFrom,
		RelatedLang: "enm", RelatedTerm: "dogge",
	}
	inh.TermID = etym.TermID(inh.Lang, inh.Term)
	inh.RelatedTermID = etym.TermID(inh.RelatedLang, inh.RelatedTerm)

	nested := inh
	nested.Reltype = etym.HasAffix
	nested.RelatedTerm = "-a"
	nested.RelatedTermID = etym.TermID("enm", "-a")
	nested.Position = 1
	nested.GroupTag = "01HZX0000000000000000000AA"
	nested.ParentTag = "01HZX0000000000000000000AB"
	nested.ParentPosition = 0
	return []etym.Record{inh, nested}
}

func TestOpenUnknown(t *testing.T) {
	s, err := Open(context.Background(), "carrier-pigeon", "", Options{})
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, ErrUnknownKind), "got %v", err)
	assert.False(t, Known("carrier-pigeon"))
	for _, k := range Kinds() {
		assert.True(t, Known(k), k)
	}
}

func TestNewDocument(t *testing.T) {
	recs := testRecords()
	plain, nested := NewDocument(recs[0]), NewDocument(recs[1])

	assert.NotEqual(t, plain.ID, nested.ID)
	assert.Nil(t, plain.ParentPosition)
	require.NotNil(t, nested.ParentPosition)
	assert.Equal(t, 0, *nested.ParentPosition)

	retagged := recs[0]
	retagged.GroupTag = "01HZX0000000000000000000ZZ"
	assert.Equal(t, plain.ID, NewDocument(retagged).ID, "ids must not depend on group tags")

	b, err := json.Marshal(plain)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, plain.ID, m["_id"])
	assert.Equal(t, "dogge", m["related_term"])
	assert.NotContains(t, m, "parent_position")
	assert.NotContains(t, m, "group_tag")

	f := nested.fields()
	assert.Equal(t, 0, f["parent_position"])
	assert.Equal(t, nested.ParentTag, f["parent_tag"])
	assert.NotContains(t, f, "_id")
}

func TestDocumentsAcrossEtymologies(t *testing.T) {
	text := "==Dutch==\n===Etymology 1===\n{{bor|nl|en|dog}}\n===Etymology 2===\n{{bor|nl|en|dog}}\n"
	res := wikietym.Dispatch("dog", text, etym.NewRegistry())
	require.NoError(t, res.Err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, NewDocument(res.Records[0]).ID, NewDocument(res.Records[1]).ID,
		"one document per relation, whichever section it came from")

	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "etymology.db"))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.WriteRecords(res.Records))
	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM etymology").Scan(&n))
	assert.Equal(t, 2, n, "rows are kept per record")
}

func TestCSV(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "etymology.csv.gz")
	s, err := Open(context.Background(), CSV, fn, Options{})
	require.NoError(t, err)

	recs := testRecords()
	require.NoError(t, s.WriteRecords(recs[:1]))
	require.NoError(t, s.WriteRecords(recs[1:]))
	require.NoError(t, s.Close())

	f, err := os.Open(fn)
	require.NoError(t, err)
	defer f.Close()
	z, err := gzip.NewReader(f)
	require.NoError(t, err)
	rows, err := csv.NewReader(z).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, etym.Header(), rows[0])
	assert.Equal(t, recs[0].Row(), rows[1])
	assert.Equal(t, recs[1].Row(), rows[2])
	assert.Equal(t, "", rows[1][10])
	assert.Equal(t, "0", rows[2][10])
}

func TestCSVBadPath(t *testing.T) {
	_, err := OpenCSV(filepath.Join(t.TempDir(), "missing", "out.csv.gz"))
	assert.Error(t, err)
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	fn := filepath.Join(t.TempDir(), "etymology.db")
	s, err := OpenSQLite(ctx, fn)
	require.NoError(t, err)
	defer s.Close()

	recs := testRecords()
	require.NoError(t, s.WriteRecords(recs))
	require.NoError(t, s.WriteDiagnostics(map[string]int{"rfe": 2, "ja-r": 1}))
	require.NoError(t, s.WriteDiagnostics(map[string]int{"rfe": 3}))

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM etymology").Scan(&n))
	assert.Equal(t, 2, n)

	var parentPos sql.NullInt64
	var groupTag sql.NullString
	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT group_tag, parent_position FROM etymology WHERE reltype = ?",
		etym.InheritedFrom).Scan(&groupTag, &parentPos))
	assert.False(t, groupTag.Valid)
	assert.False(t, parentPos.Valid)

	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT parent_position FROM etymology WHERE reltype = ?",
		etym.HasAffix).Scan(&parentPos))
	assert.True(t, parentPos.Valid)
	assert.Equal(t, int64(0), parentPos.Int64)

	require.NoError(t, s.db.QueryRowContext(ctx,
		"SELECT count FROM unknown_templates WHERE name = ?", "rfe").Scan(&n))
	assert.Equal(t, 5, n)
}

func TestElasticBatches(t *testing.T) {
	var updates []*elasticsearch.UpdateInstruction
	sends, quits := 0, 0
	e := newElasticLoader("", "", 3,
		func(ui *elasticsearch.UpdateInstruction) { updates = append(updates, ui) },
		func() { sends++ },
		func() { quits++ })

	recs := testRecords()
	for i := 0; i < 4; i++ {
		require.NoError(t, e.WriteRecords(recs))
	}
	assert.Len(t, updates, 8)
	assert.Equal(t, 2, sends)

	require.NoError(t, e.Close())
	assert.Equal(t, 3, sends)
	assert.Equal(t, 1, quits)

	ui := updates[0]
	assert.Equal(t, DefaultIndex, ui.Index)
	assert.Equal(t, DefaultType, ui.Type)
	assert.Equal(t, NewDocument(recs[0]).ID, ui.Id)
}
