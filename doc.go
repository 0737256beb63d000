// Package wikietym mines etymological relations out of the Wiktionary
// xml dump format.
//
// The dumps are available from the wikimedia group here:
//    http://dumps.wikimedia.org/
//
// In particular, I've worked mostly with the enwiktionary dumps from here:
//    http://dumps.wikimedia.org/enwiktionary/
//
// Pages are read one at a time from a single stream or a multistream
// dump. The etymology sections of each content page are normalized so
// that every statement is a single template, and the templates are
// handed to an etym.Registry to become records. An Aggregator does this
// for a whole dump on a pool of workers.
//
// See tools/etymdump for the command line program.
package wikietym
