// Command shoretemp checks the Chicago Shore water temperature once and sends
// it to the configured Telegram chats. Run it from cron or a CI schedule.
package main

import "github.com/oshokin/shoretemp/cmd/shoretemp/cmd"

func main() {
	cmd.Execute()
}
