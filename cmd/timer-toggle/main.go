package main

import "github.com/oshokin/timer-toggle/cmd/timer-toggle/cmd"

func main() {
	cmd.Execute()
}
