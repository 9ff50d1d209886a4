// Package main seeds a user's collection from a CSV file and prints an
// access token for that user, for trying the API locally.
//
// Usage:
//
//	go run ./cmd/seed -user alice
//	go run ./cmd/seed -user alice -csv ~/books.csv -data-path ~/.bookshelf
package main

import (
	"bytes"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/di"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

//go:embed sample_books.csv
var sampleBooks []byte

var (
	userID  = flag.String("user", "demo-user", "User whose collection receives the books")
	csvPath = flag.String("csv", "", "CSV file to import (default: built-in sample)")
)

func main() {
	// The container's config provider parses the command line, including
	// the flags above.
	injector := di.NewContainer()
	defer func() { _ = injector.Shutdown() }()

	transfer, err := do.Invoke[*service.TransferService](injector)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	tokens := do.MustInvoke[*auth.TokenService](injector)

	var src io.Reader = bytes.NewReader(sampleBooks)
	if *csvPath != "" {
		f, err := os.Open(*csvPath)
		if err != nil {
			log.Fatalf("Failed to open %s: %v", *csvPath, err)
		}
		defer f.Close()
		src = f
	}

	summary, err := transfer.Import(context.Background(), *userID, src)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Printf("Import %s for user %s\n", summary.ImportID, *userID)
	fmt.Printf("  imported: %d\n", summary.ImportedCount)
	fmt.Printf("  skipped:  %d\n", summary.SkippedCount)
	for _, row := range summary.SkippedRows {
		fmt.Printf("    row %d %q: %s\n", row.Row, row.Title, row.Reason)
	}

	token, err := tokens.GenerateAccessToken(*userID)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Printf("\nAuthorization: Bearer %s\n", token)
}
