package sink

import (
	"fmt"
	"log"

	"github.com/dustin/go-couch"
	"github.com/dustin/httputil"

	"github.com/dustin/go-wikietym/etym"
)

// A CouchDBStore inserts one document per record. A document that
// already exists is left alone.
type CouchDBStore struct {
	db couch.Database

	// Conflicts counts records whose document was already stored.
	Conflicts int64
}

// OpenCouchDB connects to the database at dburl.
func OpenCouchDB(dburl string) (*CouchDBStore, error) {
	db, err := couch.Connect(dburl)
	if err != nil {
		return nil, fmt.Errorf("connecting to couchdb: %w", err)
	}
	return &CouchDBStore{db: db}, nil
}

func (c *CouchDBStore) WriteRecords(recs []etym.Record) error {
	for _, r := range recs {
		doc := NewDocument(r)
		_, _, err := c.db.Insert(&doc)
		switch {
		case err == nil:
		case httputil.IsHTTPStatus(err, 409):
			c.Conflicts++
		default:
			return fmt.Errorf("inserting %v: %w", doc.ID, err)
		}
	}
	return nil
}

func (c *CouchDBStore) Close() error {
	if c.Conflicts > 0 {
		log.Printf("couchdb: %v records were already stored", c.Conflicts)
	}
	return nil
}
