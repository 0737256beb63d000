// Package sink stores etymology records.
//
// The default sink is a gzipped CSV file with a header row. The others
// load records as documents into a database, one document per record.
//
// Document ids are derived from a record's terms, relation and position
// but not its group tag. Identical relations from two etymology sections
// of one term (Etymology 1 and Etymology 2) map to the same document, so
// a database may hold fewer documents than records written. CouchDB and
// MongoDB report the later ones as conflicts or duplicates, Couchbase and
// Elasticsearch overwrite. The CSV and SQLite sinks keep every row.
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dustin/go-wikietym/etym"
)

// Sink kinds.
const (
	CSV           = "csv"
	SQLite        = "sqlite"
	CouchDB       = "couchdb"
	Couchbase     = "couchbase"
	Elasticsearch = "elasticsearch"
	Mongo         = "mongo"
)

var kinds = []string{CSV, SQLite, CouchDB, Couchbase, Elasticsearch, Mongo}

// ErrUnknownKind is returned by Open for a kind it does not know.
var ErrUnknownKind = errors.New("unknown sink kind")

// A Sink receives batches of records.
type Sink interface {
	WriteRecords(recs []etym.Record) error
	Close() error
}

// Options configure the database sinks. Fields a sink does not use are
// ignored.
type Options struct {
	URL        string `yaml:"url"`
	Pool       string `yaml:"pool"`
	Bucket     string `yaml:"bucket"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	Index      string `yaml:"index"`
	Type       string `yaml:"type"`
	BatchSize  int    `yaml:"batch_size"`
}

// Kinds lists the sink kinds Open accepts.
func Kinds() []string {
	rv := make([]string, len(kinds))
	copy(rv, kinds)
	return rv
}

// Known reports whether kind names a sink.
func Known(kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Open creates the sink named by kind. path is the output file of the
// file based sinks.
func Open(ctx context.Context, kind, path string, o Options) (Sink, error) {
	switch kind {
	case CSV:
		return opened(OpenCSV(path))
	case SQLite:
		return opened(OpenSQLite(ctx, path))
	case CouchDB:
		return opened(OpenCouchDB(o.URL))
	case Couchbase:
		return opened(OpenCouchbase(o.URL, o.Pool, o.Bucket))
	case Elasticsearch:
		return OpenElastic(o.URL, o.Index, o.Type, o.BatchSize), nil
	case Mongo:
		return opened(OpenMongo(o.URL, o.Database, o.Collection))
	}
	return nil, fmt.Errorf("%w %q (want one of %v)", ErrUnknownKind, kind,
		strings.Join(kinds, ", "))
}

// opened keeps a failed constructor's nil pointer out of the interface.
func opened[S Sink](s S, err error) (Sink, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

var relationSpace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("wikietym/relation"))

// A Document is the database form of a record.
type Document struct {
	ID             string `json:"_id" bson:"_id"`
	TermID         string `json:"term_id" bson:"term_id"`
	Lang           string `json:"lang" bson:"lang"`
	Term           string `json:"term" bson:"term"`
	Reltype        string `json:"reltype" bson:"reltype"`
	RelatedTermID  string `json:"related_term_id" bson:"related_term_id"`
	RelatedLang    string `json:"related_lang" bson:"related_lang"`
	RelatedTerm    string `json:"related_term" bson:"related_term"`
	Position       int    `json:"position" bson:"position"`
	GroupTag       string `json:"group_tag,omitempty" bson:"group_tag,omitempty"`
	ParentTag      string `json:"parent_tag,omitempty" bson:"parent_tag,omitempty"`
	ParentPosition *int   `json:"parent_position,omitempty" bson:"parent_position,omitempty"`
}

// NewDocument maps r to a Document.
//
// The document id depends only on what the record says, not on its
// group tags, so loading the same dump twice addresses the same
// documents.
func NewDocument(r etym.Record) Document {
	d := Document{
		TermID:        r.TermID,
		Lang:          r.Lang,
		Term:          r.Term,
		Reltype:       r.Reltype,
		RelatedTermID: r.RelatedTermID,
		RelatedLang:   r.RelatedLang,
		RelatedTerm:   r.RelatedTerm,
		Position:      r.Position,
		GroupTag:      r.GroupTag,
		ParentTag:     r.ParentTag,
	}
	key := fmt.Sprintf("%s|%s|%s|%d", r.TermID, r.Reltype, r.RelatedTermID, r.Position)
	if r.ParentTag != "" {
		pp := r.ParentPosition
		d.ParentPosition = &pp
		key += fmt.Sprintf("|%d", pp)
	}
	d.ID = uuid.NewSHA1(relationSpace, []byte(key)).String()
	return d
}

// fields is the document as a generic map, for APIs that want one.
func (d Document) fields() map[string]interface{} {
	rv := map[string]interface{}{
		"term_id":         d.TermID,
		"lang":            d.Lang,
		"term":            d.Term,
		"reltype":         d.Reltype,
		"related_term_id": d.RelatedTermID,
		"related_lang":    d.RelatedLang,
		"related_term":    d.RelatedTerm,
		"position":        d.Position,
	}
	if d.GroupTag != "" {
		rv["group_tag"] = d.GroupTag
	}
	if d.ParentTag != "" {
		rv["parent_tag"] = d.ParentTag
	}
	if d.ParentPosition != nil {
		rv["parent_position"] = *d.ParentPosition
	}
	return rv
}
