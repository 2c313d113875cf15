// Generates the embeddings file the composer uses for retrieval:
// chunks the memories corpus into paragraphs, embeds each one, and
// writes the set as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/dodobird181/sambot2/internal/gpt"
	"github.com/dodobird181/sambot2/internal/knowledge"
)

func main() {
	in := flag.String("in", "res/memories.md", "corpus file to embed")
	out := flag.String("out", "res/embeddings.json", "embeddings file to write")
	flag.Parse()

	_ = godotenv.Load()
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "OPENAI_API_KEY is required")
		os.Exit(1)
	}

	text, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read corpus: %v\n", err)
		os.Exit(1)
	}
	fragments := knowledge.Fragments(string(text))
	if len(fragments) == 0 {
		fmt.Fprintf(os.Stderr, "%s holds no fragments to embed\n", *in)
		os.Exit(1)
	}

	client := gpt.NewClient(apiKey)
	ctx := context.Background()

	embeddings := make([]knowledge.Embedding, 0, len(fragments))
	for i, fragment := range fragments {
		vector, err := client.Embed(ctx, fragment)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to embed fragment %d: %v\n", i+1, err)
			os.Exit(1)
		}
		embeddings = append(embeddings, knowledge.Embedding{Content: fragment, Vector: vector})
		fmt.Printf("Embedded fragment %d/%d (%d dims)\n", i+1, len(fragments), len(vector))
	}

	if err := knowledge.SaveEmbeddings(*out, embeddings); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write embeddings: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d embeddings to %s\n", len(embeddings), *out)
}
