package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/newsdesk-dev/newsdesk-queue/internal/engine"
	"github.com/newsdesk-dev/newsdesk-queue/pkg/audit"
	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
	"github.com/newsdesk-dev/newsdesk-queue/pkg/sdk"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	addr := os.Getenv("NEWSDESK_ADDR")
	if addr == "" {
		addr = "localhost:7002"
	}
	client := sdk.Connect(addr)
	ctx := context.Background()

	command := strings.ToUpper(os.Args[1])
	args := os.Args[2:]

	switch command {
	case "LIST":
		params := schema.ListParams{}
		if len(args) > 0 {
			params.Query = args[0]
		}
		result, err := client.ListArticles(ctx, params)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(result)

	case "GET":
		if len(args) < 1 {
			log.Fatal("Usage: newsqueue GET <id>")
		}
		a, err := client.GetArticle(ctx, args[0])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(a)

	case "PATCH":
		if len(args) < 2 {
			log.Fatal("Usage: newsqueue PATCH <id> <patch-json>")
		}
		var patch schema.ArticlePatch
		if err := json.Unmarshal([]byte(args[1]), &patch); err != nil {
			log.Fatalf("Invalid patch JSON: %v", err)
		}
		a, err := client.PatchArticle(ctx, args[0], patch)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(a)

	case "SCHEDULE":
		if len(args) < 2 {
			log.Fatal("Usage: newsqueue SCHEDULE <id> <rfc3339-time>")
		}
		a, err := client.ScheduleArticle(ctx, args[0], args[1])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(a)

	case "REVIEW":
		if len(args) < 1 {
			log.Fatal("Usage: newsqueue REVIEW <id>")
		}
		status := schema.StatusInReview
		a, err := client.PatchArticle(ctx, args[0], schema.ArticlePatch{Status: &status})
		if err != nil {
			log.Fatal(err)
		}
		printJSON(a)

	case "PUBLISH":
		if len(args) < 1 {
			log.Fatal("Usage: newsqueue PUBLISH <id>")
		}
		status := schema.StatusPublished
		unset := ""
		a, err := client.PatchArticle(ctx, args[0], schema.ArticlePatch{Status: &status, ScheduledAt: &unset})
		if err != nil {
			log.Fatal(err)
		}
		printJSON(a)

	case "AUDIT":
		if len(args) < 1 {
			log.Fatal("Usage: newsqueue AUDIT <id>")
		}
		a, err := client.GetArticle(ctx, args[0])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(audit.Recent(a.AuditLog, audit.RecentLimit))

	case "EXPORT":
		if len(args) < 1 {
			log.Fatal("Usage: newsqueue EXPORT <dir>")
		}
		n, err := exportArticles(ctx, client, args[0])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Exported %d articles to %s\n", n, args[0])

	case "PING":
		if err := client.Ping(ctx); err != nil {
			log.Fatal(err)
		}
		fmt.Println("PONG")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

// exportArticles pulls every page from the daemon into a local file-backed
// store, for offline snapshots.
func exportArticles(ctx context.Context, client *sdk.Client, dir string) (int, error) {
	p, err := engine.NewPersistence(dir)
	if err != nil {
		return 0, err
	}
	dst := engine.NewMemStorage(nil, p)

	total := 0
	for page := 1; ; page++ {
		result, err := client.ListArticles(ctx, schema.ListParams{Page: page, PageSize: schema.MaxPageSize})
		if err != nil {
			return total, err
		}
		for _, a := range result.Items {
			if err := dst.Upsert(ctx, a); err != nil {
				return total, err
			}
		}
		total += len(result.Items)
		if total >= result.Total || len(result.Items) == 0 {
			break
		}
	}
	dst.Wait()
	return total, nil
}

func printUsage() {
	fmt.Println("newsqueue - CLI for the newsdesk content queue")
	fmt.Println("\nUsage:")
	fmt.Println("  newsqueue LIST [query]")
	fmt.Println("  newsqueue GET <id>")
	fmt.Println("  newsqueue PATCH <id> <patch-json>")
	fmt.Println("  newsqueue SCHEDULE <id> <rfc3339-time>")
	fmt.Println("  newsqueue REVIEW <id>")
	fmt.Println("  newsqueue PUBLISH <id>")
	fmt.Println("  newsqueue AUDIT <id>")
	fmt.Println("  newsqueue EXPORT <dir>")
	fmt.Println("  newsqueue PING")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  NEWSDESK_ADDR    Address of the daemon (default: localhost:7002)")
}

func printJSON(v any) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(bytes))
}
