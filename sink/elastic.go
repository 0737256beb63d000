package sink

import (
	"github.com/dustin/go-elasticsearch"

	"github.com/dustin/go-wikietym/etym"
)

// Elasticsearch defaults.
const (
	DefaultIndex     = "etymology"
	DefaultType      = "relation"
	DefaultBatchSize = 1000
)

// An ElasticLoader feeds records to the bulk API, sending a batch
// every BatchSize records.
type ElasticLoader struct {
	index, typ string
	batchSize  int
	pending    int

	update func(*elasticsearch.UpdateInstruction)
	send   func()
	quit   func()
}

// OpenElastic starts a bulk loader against the server at url. Requests
// are sent in the background; nothing is checked until they are.
func OpenElastic(url, index, typ string, batchSize int) *ElasticLoader {
	es := elasticsearch.ElasticSearch{URL: url}
	bulkLoader := es.Bulk()
	return newElasticLoader(index, typ, batchSize,
		func(ui *elasticsearch.UpdateInstruction) { bulkLoader.Update(ui) },
		func() { bulkLoader.SendBatch() },
		func() { bulkLoader.Quit() })
}

func newElasticLoader(index, typ string, batchSize int,
	update func(*elasticsearch.UpdateInstruction), send, quit func()) *ElasticLoader {

	if index == "" {
		index = DefaultIndex
	}
	if typ == "" {
		typ = DefaultType
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ElasticLoader{
		index:     index,
		typ:       typ,
		batchSize: batchSize,
		update:    update,
		send:      send,
		quit:      quit,
	}
}

func (e *ElasticLoader) WriteRecords(recs []etym.Record) error {
	for _, r := range recs {
		doc := NewDocument(r)
		e.update(&elasticsearch.UpdateInstruction{
			Id:    doc.ID,
			Index: e.index,
			Type:  e.typ,
			Body:  doc.fields(),
		})
		e.pending++
		if e.pending >= e.batchSize {
			e.send()
			e.pending = 0
		}
	}
	return nil
}

// Close sends what is pending and stops the loader.
func (e *ElasticLoader) Close() error {
	if e.pending > 0 {
		e.send()
		e.pending = 0
	}
	e.quit()
	return nil
}
