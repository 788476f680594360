package main

import "github.com/padsynth/tracker-go/cmd/tracker/cmd"

func main() {
	cmd.Execute()
}
