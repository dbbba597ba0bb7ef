package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ai-portfolio/portfolio-backend/internal/scoring"
)

// Scores a ratings file against a rubric without the server, e.g.
//
//	scorer -in ratings.json -rubric quick_assessment
//
// The input is a flat JSON object of criterion id -> rating.
func main() {
	in := flag.String("in", "", "path to a JSON file of criterion ratings")
	rubricID := flag.String("rubric", "quick_assessment", "rubric id to score against")
	rubricDir := flag.String("rubric-dir", "", "optional directory of extra rubric YAML files")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	raw, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("read ratings: %v", err)
	}

	var ratings scoring.Ratings
	if err := json.Unmarshal(raw, &ratings); err != nil {
		log.Fatalf("parse ratings: %v", err)
	}

	registry := scoring.NewRegistry()
	if *rubricDir != "" {
		if err := registry.LoadDir(*rubricDir); err != nil {
			log.Fatalf("load rubrics: %v", err)
		}
	}

	scores, err := registry.Calculate(ratings, *rubricID)
	if err != nil {
		log.Fatalf("score: %v", err)
	}

	out, err := json.MarshalIndent(map[string]any{
		"scores":        scores,
		"priorityLabel": scores.PriorityLabel(),
		"priorityColor": scores.PriorityColor(),
	}, "", "  ")
	if err != nil {
		log.Fatalf("encode result: %v", err)
	}
	fmt.Println(string(out))
}
