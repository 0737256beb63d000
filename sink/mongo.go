package sink

import (
	"fmt"

	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/dustin/go-wikietym/etym"
)

// Mongo defaults.
const (
	DefaultDatabase   = "wiktionary"
	DefaultCollection = "etymology"
	unknownCollection = "unknown_templates"
)

var termIndex = mgo.Index{
	Key:        []string{"term_id"},
	Background: true,
}

// A MongoStore inserts one document per record and keeps unknown
// template counts in a second collection.
type MongoStore struct {
	session *mgo.Session
	db      *mgo.Database
	c       *mgo.Collection

	// Dups counts records whose document was already stored.
	Dups int64
}

// OpenMongo dials url and makes sure the term index exists.
func OpenMongo(url, dbname, collection string) (*MongoStore, error) {
	if dbname == "" {
		dbname = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	session, err := mgo.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	db := session.DB(dbname)
	c := db.C(collection)
	if err := c.EnsureIndex(termIndex); err != nil {
		session.Close()
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return &MongoStore{session: session, db: db, c: c}, nil
}

func (m *MongoStore) WriteRecords(recs []etym.Record) error {
	for _, r := range recs {
		doc := NewDocument(r)
		err := m.c.Insert(&doc)
		switch {
		case err == nil:
		case mgo.IsDup(err):
			m.Dups++
		default:
			return fmt.Errorf("inserting %v: %w", doc.ID, err)
		}
	}
	return nil
}

func (m *MongoStore) WriteDiagnostics(counts map[string]int) error {
	c := m.db.C(unknownCollection)
	for name, n := range counts {
		_, err := c.UpsertId(name, bson.M{"$inc": bson.M{"count": n}})
		if err != nil {
			return fmt.Errorf("counting %v: %w", name, err)
		}
	}
	return nil
}

func (m *MongoStore) Close() error {
	m.session.Close()
	return nil
}
