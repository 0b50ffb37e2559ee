package main

import "github.com/pfrederiksen/npb-scrape/internal/cli"

func main() {
	cli.Execute()
}
