package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dimuls/textclassifier/corpus"
	"github.com/dimuls/textclassifier/entity"
)

const defaultCorpusQuery = `SELECT text, label FROM samples`

type corpusSource struct {
	filePath string
	driver   string
	dsn      string
	query    string
}

func loadCorpus(src corpusSource, opts corpus.Options) ([]entity.Sample, error) {
	l := corpus.NewLoader(opts)

	switch {
	case src.filePath != "":
		return l.LoadFile(src.filePath)
	case src.driver != "":
		return loadSQLCorpus(l, src)
	}

	return nil, errors.New("corpus file or database driver should be specified")
}

func loadSQLCorpus(l *corpus.Loader, src corpusSource) ([]entity.Sample, error) {
	db, err := sql.Open(src.driver, src.dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	query := src.query
	if query == "" {
		query = defaultCorpusQuery
	}

	return l.LoadSQL(ctx, db, query)
}
