// Command shoretemp-bot answers Telegram commands with the current Chicago
// Shore water temperature.
package main

import "github.com/oshokin/shoretemp/cmd/shoretemp-bot/cmd"

func main() {
	cmd.Execute()
}
