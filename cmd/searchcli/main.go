// Command searchcli runs an interactive search session against an in-process
// engine seeded with a small sample corpus. It exists for demos and for
// poking at ranking behaviour without the full platform running.
//
// Usage:
//
//	go run ./cmd/searchcli
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vectorsearchlab/platform/internal/indexer"
)

const maxResults = 5

var sampleDocs = []string{
	"At Scale You Will Hit Every Performance Issue. I used to think I knew a bit about performance scalability and how to keep things trucking when you hit large amounts of data. Truth is I know diddly squat on the subject since the most I have ever done is read about how its done.",
	"Richard Stallman to visit Australia. Im not usually one to promote events and the like unless I feel there is a genuine benefit to be had by attending but this is one stands out. Richard M Stallman the guru of Free Software is coming Down Under to hold a talk.",
	"MySQL Backups Done Easily. One thing that comes up a lot on sites like Stackoverflow and the like is how to backup MySQL databases. The first answer is usually use mysqldump. This is all fine and good till you start to want to dump multiple databases.",
	"Why You Shouldn't roll your own CAPTCHA. At a TechEd I attended a few years ago I was watching a presentation about Security presented by Rocky Heckman. In it he was talking about security algorithms.",
	"The Great Benefit of Test Driven Development Nobody Talks About. The feeling of productivity because you are writing lots of code. Think about that for a moment. Ask any developer who wants to develop why they became a developer.",
	"Setting up GIT to use a Subversion SVN style workflow. Moving from Subversion SVN to GIT can be a little confusing at first. I think the biggest thing I noticed was that GIT doesnt have a specific workflow you have to pick your own.",
	"Why CAPTCHA Never Use Numbers 0 1 5 7. Interestingly this sort of question pops up a lot in my referring search term stats. Its because each of the above numbers are easy to confuse with a letter.",
}

func main() {
	engine := indexer.New()

	fmt.Println("Building search index...")
	for i, text := range sampleDocs {
		engine.AddDocument(strconv.Itoa(i), text)
	}

	stats := engine.Stats()
	fmt.Println("\nSearch engine ready!")
	fmt.Printf("Documents indexed: %d\n", stats.TotalDocuments)
	fmt.Printf("Unique terms: %d\n", stats.UniqueTerms)
	fmt.Printf("Average document length: %.2f terms\n", stats.AvgDocLength)

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("SEARCH ENGINE - Enter your queries below")
	fmt.Println("Type 'quit' to exit")
	fmt.Println(strings.Repeat("=", 50))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nEnter search term: ")
		if !scanner.Scan() {
			fmt.Println("\nGoodbye!")
			return
		}
		query := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(query) {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return
		case "":
			fmt.Println("Please enter a search term.")
			continue
		}

		results, err := engine.Search(query, maxResults)
		if err != nil {
			fmt.Printf("Search failed: %v\n", err)
			continue
		}
		if len(results) == 0 {
			fmt.Printf("No results found for %q\n", query)
			continue
		}

		fmt.Printf("\nResults for %q:\n", query)
		fmt.Println(strings.Repeat("-", 40))
		for i, result := range results {
			fmt.Printf("%d. Score: %.4f\n", i+1, result.Score)
			fmt.Printf("   Doc ID: %s\n", result.DocID)
			fmt.Printf("   Preview: %s\n\n", result.Preview)
		}
	}
}
