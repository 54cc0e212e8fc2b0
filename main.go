package main

import "github.com/KaramelBytes/matchstats-cli/cmd"

func main() {
	cmd.Execute()
}
