package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"lawchat-backend/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	reset := flag.Bool("reset", false, "drop existing law tables first")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Enable pgvector extension
	if _, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
	} else {
		log.Println("✓ pgvector extension enabled")
	}

	if *reset {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS law_articles, laws CASCADE"); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✓ Dropped existing law tables")
	}

	// Articles keep their position in the statute; headings and articles are
	// interleaved and the order carries the hierarchy
	schemaSQL := `
CREATE TABLE IF NOT EXISTS laws (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE CHECK (btrim(name) <> ''),
    level TEXT NOT NULL DEFAULT '',
    url TEXT NOT NULL DEFAULT '',
    pcode TEXT NOT NULL DEFAULT '',
    modified_date DATE,
    effective_date DATE,
    abandon_note TEXT NOT NULL DEFAULT '',
    embedded BOOLEAN NOT NULL DEFAULT false,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS law_articles (
    law_id BIGINT NOT NULL REFERENCES laws(id) ON DELETE CASCADE,
    ordinal INTEGER NOT NULL,
    type CHAR(1) NOT NULL CHECK (type IN ('A', 'C')),
    number TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    embedding vector(768),
    PRIMARY KEY (law_id, ordinal),
    CHECK ((type = 'C' AND number = '') OR (type = 'A' AND number <> ''))
);`

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		log.Fatalf("Failed to create law tables: %v", err)
	}
	log.Println("✓ Created laws and law_articles tables")

	indexes := []struct {
		name string
		sql  string
	}{
		{
			name: "Unique article numbers per law",
			sql:  "CREATE UNIQUE INDEX IF NOT EXISTS idx_law_articles_number ON law_articles(law_id, number) WHERE type = 'A';",
		},
		{
			name: "Vector inner product search (HNSW)",
			sql: `CREATE INDEX IF NOT EXISTS idx_law_articles_embedding_hnsw ON law_articles
USING hnsw (embedding vector_ip_ops)
WITH (m = 16, ef_construction = 64);`,
		},
	}

	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx.sql); err != nil {
			log.Printf("Warning: Failed to create index %s: %v", idx.name, err)
		} else {
			log.Printf("✓ Created index: %s", idx.name)
		}
	}

	fmt.Println("\n✅ Database schema created successfully!")
	fmt.Println("   Tables: laws, law_articles")
}
