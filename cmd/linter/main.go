package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/vtarasov/url-shortener/cmd/linter/analyzer"
)

func main() {
	singlechecker.Main(analyzer.Analyzer)
}
