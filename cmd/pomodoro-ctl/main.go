// Command pomodoro-ctl controls a running pomodoro-server.
package main

import "github.com/oshokin/pomodoro-alarm/cmd/pomodoro-ctl/cmd"

func main() {
	cmd.Execute()
}
