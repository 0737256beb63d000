package sink

import (
	"fmt"

	"github.com/couchbase/go-couchbase"

	"github.com/dustin/go-wikietym/etym"
)

// DefaultPool is the Couchbase pool used when none is configured.
const DefaultPool = "default"

// A CouchbaseBucket stores each record under its document id.
type CouchbaseBucket struct {
	b *couchbase.Bucket
}

// OpenCouchbase connects to a bucket of the cluster at url.
func OpenCouchbase(url, pool, bucket string) (*CouchbaseBucket, error) {
	if pool == "" {
		pool = DefaultPool
	}
	if bucket == "" {
		bucket = "default"
	}
	b, err := couchbase.GetBucket(url, pool, bucket)
	if err != nil {
		return nil, fmt.Errorf("connecting to couchbase: %w", err)
	}
	return &CouchbaseBucket{b: b}, nil
}

func (c *CouchbaseBucket) WriteRecords(recs []etym.Record) error {
	for _, r := range recs {
		doc := NewDocument(r)
		if err := c.b.Set(doc.ID, 0, doc); err != nil {
			return fmt.Errorf("setting %v: %w", doc.ID, err)
		}
	}
	return nil
}

func (c *CouchbaseBucket) Close() error {
	c.b.Close()
	return nil
}
